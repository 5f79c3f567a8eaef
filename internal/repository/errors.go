// Package repository implements the credential store on top of database/sql
// and an optional Redis read-through cache.
//
// Callers distinguish failure scenarios through sentinel errors:
// ErrEmailExists signals a unique-email violation and should become an
// HTTP 409, while ErrNotFound signals that no record matched the lookup.
// Every other error is a wrapped driver failure.
package repository

import "errors"

// ErrEmailExists is returned by Create when the email is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")
