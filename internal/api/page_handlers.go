package api

import (
	"embed"
	"encoding/json/v2"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/folllow/folllow-server/internal/domain"
	"github.com/folllow/folllow-server/internal/geo"
	"github.com/folllow/folllow-server/internal/http/response"
	"github.com/folllow/folllow-server/internal/service"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Public pages sit behind a CDN; short edge cache, longer stale window.
const pageCacheControl = "public, s-maxage=10, stale-while-revalidate=59"

// mediaLabels maps platforms to the text shown on link buttons.
var mediaLabels = map[domain.SocialMedia]string{
	domain.SocialTwitter:   "Twitter",
	domain.SocialInstagram: "Instagram",
	domain.SocialYoutube:   "YouTube",
	domain.SocialTiktok:    "TikTok",
	domain.SocialGithub:    "GitHub",
	domain.SocialTwitch:    "Twitch",
	domain.SocialFacebook:  "Facebook",
	domain.SocialLinkedin:  "LinkedIn",
	domain.SocialDiscord:   "Discord",
	domain.SocialWebsite:   "Website",
}

type pageLink struct {
	Media string
	Label string
	URL   string
}

type pageData struct {
	Slug       string
	Bio        string
	Theme      string
	ImageURL   string
	AdsEnabled bool
	Links      []pageLink
}

// handlePage renders a published tree. Bare handles redirect to their
// @-prefixed form so every page has one canonical URL.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if !strings.HasPrefix(slug, "@") {
		if _, err := s.services.Page.Resolve(r.Context(), "@"+slug); err == nil {
			http.Redirect(w, r, "/@"+slug, http.StatusMovedPermanently)
			return
		}
		http.NotFound(w, r)
		return
	}

	tree, err := s.services.Page.Resolve(r.Context(), slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	links := make([]pageLink, len(tree.Links))
	for i, l := range tree.Links {
		label := mediaLabels[l.Media]
		if label == "" {
			label = string(l.Media)
		}
		links[i] = pageLink{Media: string(l.Media), Label: label, URL: l.URL}
	}

	data := pageData{
		Slug:       tree.Slug,
		Bio:        tree.Bio,
		Theme:      string(tree.Theme),
		ImageURL:   s.services.Upload.PublicURL(tree.ImageKey),
		AdsEnabled: tree.AdsEnabled,
		Links:      links,
	}

	w.Header().Set("Cache-Control", pageCacheControl)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("page render failed", "slug", slug, "error", err)
	}
}

// handleGeo echoes the visitor's edge-resolved location.
func (s *Server) handleGeo(w http.ResponseWriter, r *http.Request) {
	response.Success(w, geo.FromRequest(r), s.logger)
}

// viewReport is the body posted by the page script after load. The geo
// object is optional; absent fields fall back to the edge headers.
type viewReport struct {
	Slug       string `json:"slug"`
	DedupKey   string `json:"dedup_key"`
	AdsBlocked bool   `json:"has_adblock"`
	Geo        *struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"geo"`
}

// clickReport is the body posted when a visitor follows a link.
type clickReport struct {
	Slug    string `json:"slug"`
	Element string `json:"element"`
}

func (s *Server) handlePostView(w http.ResponseWriter, r *http.Request) {
	var report viewReport
	if err := json.UnmarshalRead(r.Body, &report); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if report.Slug == "" {
		response.BadRequest(w, "slug is required", s.logger)
		return
	}

	location := geo.FromRequest(r)
	if report.Geo != nil {
		if report.Geo.City != "" {
			location.City = report.Geo.City
		}
		if report.Geo.Country != "" {
			location.Country = report.Geo.Country
		}
	}

	counted, err := s.services.Page.RecordView(r.Context(), service.ViewEvent{
		Slug:       report.Slug,
		DedupKey:   report.DedupKey,
		Location:   location,
		AdsBlocked: report.AdsBlocked,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"counted": counted}, s.logger)
}

func (s *Server) handlePostClick(w http.ResponseWriter, r *http.Request) {
	var report clickReport
	if err := json.UnmarshalRead(r.Body, &report); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if report.Slug == "" {
		response.BadRequest(w, "slug is required", s.logger)
		return
	}

	err := s.services.Page.RecordClick(r.Context(), service.ClickEvent{
		Slug:    report.Slug,
		Element: report.Element,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
