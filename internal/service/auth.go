// Package service holds the auth use cases: registration, login, logout and
// "who am I". It orchestrates the credential store, the password hasher and
// the session token codec, and translates every failure into an *AuthError.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/session-auth/internal/model"
	"github.com/iliyamo/session-auth/internal/queue"
	"github.com/iliyamo/session-auth/internal/repository"
	"github.com/iliyamo/session-auth/internal/utils"
)

// Store is the credential store the service depends on.
type Store interface {
	Create(ctx context.Context, name, email, password string) (model.User, error)
	GetByEmail(ctx context.Context, email string, withHash bool) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Options configure an AuthService.
type Options struct {
	Secret     string        // token signing secret
	TTL        time.Duration // session lifetime
	Timeout    time.Duration // bound on store and hash work per call
	BcryptCost int           // cost of the dummy hash used for unknown emails
}

// AuthService implements the auth use cases. It holds no per-session state.
type AuthService struct {
	users  Store
	opts   Options
	events queue.Publisher
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// Session is the outcome of a successful register or login: the public user
// and the token the transport must write to the cookie.
type Session struct {
	User  model.PublicUser
	Token utils.SessionToken
}

func NewAuthService(users Store, opts Options, events queue.Publisher, log *slog.Logger) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = utils.DefaultSessionTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = utils.DefaultBcryptCost
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, opts: opts, events: events, log: log}
}

// Register validates the input, creates the user (hashing the password
// before it is stored) and issues a session token for the new identity.
func (s *AuthService) Register(ctx context.Context, name, email, password, ip string) (Session, error) {
	name, email = normalize(name), normalize(email)
	if verr := validateRegistration(name, email, password); verr != nil {
		return Session{}, verr
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	u, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Session{}, newError(KindDuplicateEmail, MsgDuplicateEmail, err)
		}
		return Session{}, s.internal(ctx, "register: create user failed", err)
	}

	sess, err := s.issue(u)
	if err != nil {
		return Session{}, s.internal(ctx, "register: issue token failed", err)
	}
	s.publish(ctx, queue.AuthEvent{Type: queue.EventRegistered, UserID: u.ID, Email: u.Email, IP: ip})
	return sess, nil
}

// Login authenticates email and password. An unknown email and a wrong
// password produce the same InvalidCredentials error, and both run a bcrypt
// comparison so response timing does not reveal which one happened.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (Session, error) {
	email = normalize(email)
	if email == "" || password == "" {
		return Session{}, newError(KindMissingFields, MsgMissingLogin, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	u, err := s.users.GetByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(s.dummy(), password)
			s.publish(ctx, queue.AuthEvent{Type: queue.EventLoginFailed, Email: email, IP: ip})
			return Session{}, newError(KindInvalidCredentials, MsgInvalidCredentials, nil)
		}
		return Session{}, s.internal(ctx, "login: lookup failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.publish(ctx, queue.AuthEvent{Type: queue.EventLoginFailed, UserID: u.ID, Email: email, IP: ip})
		return Session{}, newError(KindInvalidCredentials, MsgInvalidCredentials, nil)
	}
	if err := ctx.Err(); err != nil {
		return Session{}, s.internal(ctx, "login: deadline exceeded", err)
	}

	sess, err := s.issue(u)
	if err != nil {
		return Session{}, s.internal(ctx, "login: issue token failed", err)
	}
	s.publish(ctx, queue.AuthEvent{Type: queue.EventLoggedIn, UserID: u.ID, Email: u.Email, IP: ip})
	return sess, nil
}

// Logout always succeeds; the caller clears the cookie. claims may be nil
// when the request carried no valid session. The store is not contacted.
func (s *AuthService) Logout(ctx context.Context, claims *utils.SessionClaims, ip string) error {
	ev := queue.AuthEvent{Type: queue.EventLoggedOut, IP: ip}
	if claims != nil {
		ev.UserID, ev.Email = claims.UserID, claims.Email
	}
	s.publish(ctx, ev)
	return nil
}

// FreshReader is implemented by stores that cache GetByID. GetByIDFresh
// always consults the primary store.
type FreshReader interface {
	GetByIDFresh(ctx context.Context, id string) (model.User, error)
}

// Me re-reads the user named by already verified claims from the primary
// store, bypassing any cache, so that changes and deletions made since the
// token was issued are reflected.
func (s *AuthService) Me(ctx context.Context, claims *utils.SessionClaims) (model.PublicUser, error) {
	get := s.users.GetByID
	if fr, ok := s.users.(FreshReader); ok {
		get = fr.GetByIDFresh
	}
	return s.lookup(ctx, claims, "me", get)
}

// Profile loads the signed-in user for display. It may be served from the
// user cache and so lag behind the store by up to the cache TTL.
func (s *AuthService) Profile(ctx context.Context, claims *utils.SessionClaims) (model.PublicUser, error) {
	return s.lookup(ctx, claims, "profile", s.users.GetByID)
}

func (s *AuthService) lookup(ctx context.Context, claims *utils.SessionClaims, op string,
	get func(context.Context, string) (model.User, error)) (model.PublicUser, error) {
	if claims == nil || claims.UserID == "" {
		return model.PublicUser{}, newError(KindUnauthorized, MsgUnauthorized, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	u, err := get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PublicUser{}, newError(KindNotFound, MsgUserNotFound, err)
		}
		return model.PublicUser{}, s.internal(ctx, op+": lookup failed", err)
	}
	return u.Public(), nil
}

// Verify checks a session token with the service's secret. It never fails
// loudly; false means unauthenticated.
func (s *AuthService) Verify(token string) (*utils.SessionClaims, bool) {
	return utils.VerifySessionToken(token, s.opts.Secret)
}

// TTL is the lifetime of issued sessions.
func (s *AuthService) TTL() time.Duration { return s.opts.TTL }

func (s *AuthService) issue(u model.User) (Session, error) {
	tok, err := utils.IssueSessionToken(s.opts.Secret, utils.SessionClaims{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}, s.opts.TTL)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u.Public(), Token: tok}, nil
}

// dummy returns a hash that no submitted password matches.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := utils.HashPassword("not-a-real-password-\x00", s.opts.BcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *AuthService) internal(ctx context.Context, msg string, err error) *AuthError {
	s.log.ErrorContext(ctx, msg, "error", err)
	return newError(KindInternal, MsgInternal, err)
}

// publish sends ev without letting broker trouble affect the auth outcome.
func (s *AuthService) publish(ctx context.Context, ev queue.AuthEvent) {
	ev.OccurredAt = time.Now().UTC()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.WarnContext(ctx, "auth event not published", "type", ev.Type, "error", err)
	}
}
