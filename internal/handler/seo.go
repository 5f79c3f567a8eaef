package handler

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SEO serves robots.txt and sitemap.xml for the public pages under BaseURL.
type SEO struct {
	BaseURL     string
	PublicPages []string
}

func NewSEO(baseURL string) *SEO {
	return &SEO{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		PublicPages: []string{"/", "/about", "/login", "/register"},
	}
}

// Robots keeps crawlers out of the API and the signed-in area.
func (s *SEO) Robots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/api/", "/auth/", "/dashboard/", "/profile/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + s.BaseURL + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap lists the public pages.
func (s *SEO) Sitemap(c echo.Context) error {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range s.PublicPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: s.BaseURL + p})
	}
	return c.XML(http.StatusOK, set)
}
