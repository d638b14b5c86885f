package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/folllow/folllow-server/internal/api"
	"github.com/folllow/folllow-server/internal/domain"
)

// Form is the editable state of one tree. It is what gets mirrored to
// disk and, on submit, sent to the server.
type Form struct {
	Slug       string     `json:"slug"`
	Bio        string     `json:"bio"`
	Theme      string     `json:"theme"`
	ImageKey   string     `json:"image,omitempty"`
	AdsEnabled bool       `json:"ads_enabled"`
	Links      []FormLink `json:"links"`
}

// FormLink is one link row in the form.
type FormLink struct {
	Media string `json:"media"`
	URL   string `json:"url"`
}

// Session is one edit session over a loaded tree. Every mutation
// rewrites the mirror file so a crashed session leaves its last state
// on disk. The mirror is only ever written, never read back.
type Session struct {
	client *Client
	mirror *Mirror
	logger *slog.Logger

	mu         sync.Mutex
	form       Form
	loadedSlug string
	imagePath  string // freshly selected image, empty = no change

	// Slug checks can resolve out of order; only the newest issued
	// request may update the result.
	slugSeq     uint64
	slugApplied uint64
	slugResult  *SlugStatus
}

// SlugStatus is the outcome of the newest slug check.
type SlugStatus struct {
	Slug      string
	Available bool
	Issues    []string
}

// NewSession creates an edit session backed by the given client and
// mirror location.
func NewSession(client *Client, mirror *Mirror, logger *slog.Logger) *Session {
	return &Session{
		client: client,
		mirror: mirror,
		logger: logger,
	}
}

// Load fetches the tree and initializes the form from it. The mirror
// is written immediately so even an untouched session leaves residue.
func (s *Session) Load(ctx context.Context) error {
	tree, err := s.client.GetMyTree(ctx)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]FormLink, len(tree.Links))
	for i, l := range tree.Links {
		links[i] = FormLink{Media: l.Media, URL: l.URL}
	}
	s.form = Form{
		Slug:       tree.Slug,
		Bio:        tree.Bio,
		Theme:      tree.Theme,
		ImageKey:   tree.ImageKey,
		AdsEnabled: tree.AdsEnabled,
		Links:      links,
	}
	s.loadedSlug = tree.Slug
	s.imagePath = ""
	s.writeMirrorLocked()
	return nil
}

// Form returns a snapshot of the current form state.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.form
	snapshot.Links = append([]FormLink(nil), s.form.Links...)
	return snapshot
}

func (s *Session) writeMirrorLocked() {
	if err := s.mirror.Write(s.form); err != nil {
		// Mirror failures never block editing.
		s.logger.Warn("mirror write failed", "error", err)
	}
}

// mutate applies fn to the form and rewrites the mirror.
func (s *Session) mutate(fn func(*Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
	s.writeMirrorLocked()
}

// SetBio updates the bio.
func (s *Session) SetBio(bio string) { s.mutate(func(f *Form) { f.Bio = bio }) }

// SetTheme updates the theme.
func (s *Session) SetTheme(theme string) { s.mutate(func(f *Form) { f.Theme = theme }) }

// SetAdsEnabled toggles ads on the public page.
func (s *Session) SetAdsEnabled(on bool) { s.mutate(func(f *Form) { f.AdsEnabled = on }) }

// AddLink appends a link row.
func (s *Session) AddLink(media, url string) {
	s.mutate(func(f *Form) { f.Links = append(f.Links, FormLink{Media: media, URL: url}) })
}

// RemoveLink deletes the link at index i. Out-of-range is a no-op.
func (s *Session) RemoveLink(i int) {
	s.mutate(func(f *Form) {
		if i < 0 || i >= len(f.Links) {
			return
		}
		f.Links = append(f.Links[:i], f.Links[i+1:]...)
	})
}

// MoveLink moves the link at index from to index to, shifting the rest.
func (s *Session) MoveLink(from, to int) {
	s.mutate(func(f *Form) {
		if from < 0 || from >= len(f.Links) || to < 0 || to >= len(f.Links) || from == to {
			return
		}
		link := f.Links[from]
		rest := append(f.Links[:from], f.Links[from+1:]...)
		f.Links = append(rest[:to], append([]FormLink{link}, rest[to:]...)...)
	})
}

// SetLinkMedia updates one link's platform.
func (s *Session) SetLinkMedia(i int, media string) {
	s.mutate(func(f *Form) {
		if i >= 0 && i < len(f.Links) {
			f.Links[i].Media = media
		}
	})
}

// SetLinkURL updates one link's destination.
func (s *Session) SetLinkURL(i int, url string) {
	s.mutate(func(f *Form) {
		if i >= 0 && i < len(f.Links) {
			f.Links[i].URL = url
		}
	})
}

// SelectImage marks a local file as the new avatar. The upload happens
// on Submit; selecting is purely local.
func (s *Session) SelectImage(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagePath = path
}

// CheckSlug issues an availability check for slug. Responses apply in
// issue order: a response from an older request than the newest applied
// one is discarded, so a slow early check cannot overwrite a fast late
// one.
func (s *Session) CheckSlug(ctx context.Context, slug string) error {
	s.mu.Lock()
	if !domain.ValidSlug(slug) || slug == s.loadedSlug {
		s.mu.Unlock()
		return nil
	}
	s.slugSeq++
	seq := s.slugSeq
	s.mu.Unlock()

	check, err := s.client.CheckSlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.slugApplied {
		// A newer check already resolved.
		return nil
	}
	s.slugApplied = seq
	s.slugResult = &SlugStatus{
		Slug:      slug,
		Available: check.Available,
		Issues:    check.Issues,
	}
	return nil
}

// SlugStatus returns the newest applied slug-check result, or nil when
// no check has resolved yet.
func (s *Session) SlugStatus() *SlugStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slugResult
}

// Validate checks the form against the same schema the server enforces.
// A nil return means Submit would not be rejected for shape reasons.
func (s *Session) Validate() error {
	form := s.Form()

	if len(form.Bio) > domain.BioMaxLen {
		return fmt.Errorf("bio must be at most %d characters", domain.BioMaxLen)
	}
	if !domain.Theme(form.Theme).Valid() {
		return fmt.Errorf("unknown theme %q", form.Theme)
	}
	for i, l := range form.Links {
		if !domain.SocialMedia(l.Media).Valid() {
			return fmt.Errorf("link %d: unknown platform %q", i, l.Media)
		}
		if len(l.URL) < domain.URLMinLen || len(l.URL) > domain.URLMaxLen {
			return fmt.Errorf("link %d: url must be %d-%d characters", i, domain.URLMinLen, domain.URLMaxLen)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugResult != nil && !s.slugResult.Available {
		return fmt.Errorf("slug %s is not available", s.slugResult.Slug)
	}
	return nil
}

// Submit validates and saves the form. When a new image was selected,
// the two-phase upload runs first; the new key is only committed after
// the direct upload succeeded, so a failed upload never leaves the tree
// pointing at a missing object.
func (s *Session) Submit(ctx context.Context) (api.TreeResponse, error) {
	if err := s.Validate(); err != nil {
		return api.TreeResponse{}, err
	}

	s.mu.Lock()
	form := s.form
	form.Links = append([]FormLink(nil), s.form.Links...)
	imagePath := s.imagePath
	s.mu.Unlock()

	imageKey := "" // empty keeps the stored avatar
	if imagePath != "" {
		ticket, err := s.client.PresignAvatarPost(ctx, form.ImageKey)
		if err != nil {
			return api.TreeResponse{}, fmt.Errorf("request upload ticket: %w", err)
		}
		if err := s.client.UploadAvatar(ctx, ticket, imagePath); err != nil {
			return api.TreeResponse{}, fmt.Errorf("upload avatar: %w", err)
		}
		imageKey = ticket.Key
	}

	links := make([]api.LinkRequest, len(form.Links))
	for i, l := range form.Links {
		links[i] = api.LinkRequest{Media: l.Media, URL: l.URL}
	}

	tree, err := s.client.PostTree(ctx, api.PostTreeRequest{
		Bio:        form.Bio,
		Theme:      form.Theme,
		ImageKey:   imageKey,
		AdsEnabled: form.AdsEnabled,
		Links:      links,
	})
	if err != nil {
		return api.TreeResponse{}, fmt.Errorf("save tree: %w", err)
	}

	s.mu.Lock()
	s.form.ImageKey = tree.ImageKey
	s.imagePath = ""
	s.writeMirrorLocked()
	s.mu.Unlock()

	return tree, nil
}
