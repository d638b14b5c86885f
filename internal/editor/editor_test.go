package editor

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folllow/folllow-server/internal/api"
	"github.com/folllow/folllow-server/internal/service"
	"github.com/folllow/folllow-server/internal/uploads"
)

// fakeServer emulates the API surface the editor talks to, plus the
// object-storage endpoint a presigned POST points at.
type fakeServer struct {
	*httptest.Server

	mu           sync.Mutex
	tree         api.TreeResponse
	slugChecks   map[string]service.SlugCheck
	slugDelay    map[string]chan struct{} // blocks the check until closed
	uploadStatus int
	uploadedKeys []string
	savedBodies  []api.PostTreeRequest
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{
		tree: api.TreeResponse{
			ID:    "tree-1",
			Slug:  "@alice",
			Theme: "dark",
		},
		slugChecks:   map[string]service.SlugCheck{},
		slugDelay:    map[string]chan struct{}{},
		uploadStatus: http.StatusNoContent,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/trees/me", func(w http.ResponseWriter, _ *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		writeEnvelope(w, fs.tree)
	})
	mux.HandleFunc("GET /api/v1/trees/check-slug", func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("slug")
		fs.mu.Lock()
		delay := fs.slugDelay[slug]
		check, ok := fs.slugChecks[slug]
		fs.mu.Unlock()
		if delay != nil {
			<-delay
		}
		if !ok {
			check = service.SlugCheck{Available: true}
		}
		writeEnvelope(w, check)
	})
	mux.HandleFunc("PUT /api/v1/trees/me", func(w http.ResponseWriter, r *http.Request) {
		var body api.PostTreeRequest
		if err := json.UnmarshalRead(r.Body, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fs.mu.Lock()
		fs.savedBodies = append(fs.savedBodies, body)
		if body.ImageKey != "" {
			fs.tree.ImageKey = body.ImageKey
		}
		fs.tree.Bio = body.Bio
		fs.tree.Theme = body.Theme
		tree := fs.tree
		fs.mu.Unlock()
		writeEnvelope(w, tree)
	})
	mux.HandleFunc("POST /api/v1/uploads/avatar", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, api.PresignedPostResponse{
			Post: uploads.Ticket{
				URL:    fs.URL + "/bucket",
				Fields: map[string]string{"policy": "signed"},
				Key:    "avatars/img-new",
			},
			Key: "avatars/img-new",
		})
	})
	mux.HandleFunc("POST /bucket", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		fs.mu.Lock()
		fs.uploadedKeys = append(fs.uploadedKeys, r.FormValue("policy"))
		status := fs.uploadStatus
		fs.mu.Unlock()
		w.WriteHeader(status)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.MarshalWrite(w, map[string]any{"v": 1, "success": true, "data": data})
}

func newTestSession(t *testing.T, fs *fakeServer) (*Session, string) {
	t.Helper()
	stateDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := NewSession(NewClient(fs.URL, "test-token"), NewMirror(stateDir), logger)
	return session, stateDir
}

func readMirror(t *testing.T, stateDir string) Form {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(stateDir, MirrorFileName))
	require.NoError(t, err)
	var form Form
	require.NoError(t, json.Unmarshal(raw, &form))
	return form
}

func TestLoad_InitializesFormAndMirror(t *testing.T) {
	fs := newFakeServer(t)
	fs.tree.Bio = "hello"
	fs.tree.Links = []api.LinkResponse{
		{ID: "link-1", Position: 0, Media: "github", URL: "https://github.com/alice"},
	}

	session, stateDir := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	form := session.Form()
	assert.Equal(t, "@alice", form.Slug)
	assert.Equal(t, "hello", form.Bio)
	require.Len(t, form.Links, 1)
	assert.Equal(t, "github", form.Links[0].Media)

	mirror := readMirror(t, stateDir)
	assert.Equal(t, form, mirror)
}

func TestEveryChange_RewritesMirror(t *testing.T) {
	fs := newFakeServer(t)
	session, stateDir := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	session.SetBio("first")
	assert.Equal(t, "first", readMirror(t, stateDir).Bio)

	session.SetBio("second")
	assert.Equal(t, "second", readMirror(t, stateDir).Bio)

	session.AddLink("twitch", "https://twitch.tv/alice")
	mirror := readMirror(t, stateDir)
	require.Len(t, mirror.Links, 1)
	assert.Equal(t, "twitch", mirror.Links[0].Media)

	session.SetAdsEnabled(true)
	assert.True(t, readMirror(t, stateDir).AdsEnabled)
}

func TestMoveLink(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	session.AddLink("github", "https://github.com/alice")
	session.AddLink("twitter", "https://twitter.com/alice")
	session.AddLink("website", "https://alice.dev")

	session.MoveLink(2, 0)

	form := session.Form()
	require.Len(t, form.Links, 3)
	assert.Equal(t, "website", form.Links[0].Media)
	assert.Equal(t, "github", form.Links[1].Media)
	assert.Equal(t, "twitter", form.Links[2].Media)
}

func TestCheckSlug_SkipsLoadedAndMalformed(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	// Unchanged slug and non-@ input issue no request at all.
	require.NoError(t, session.CheckSlug(context.Background(), "@alice"))
	require.NoError(t, session.CheckSlug(context.Background(), "bob"))
	assert.Nil(t, session.SlugStatus())
}

func TestCheckSlug_StaleResponseDiscarded(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	release := make(chan struct{})
	fs.mu.Lock()
	fs.slugDelay["@slowpoke"] = release
	fs.slugChecks["@slowpoke"] = service.SlugCheck{Available: true}
	fs.slugChecks["@bob"] = service.SlugCheck{
		Available: false,
		Issues:    []string{service.SlugTakenMessage},
	}
	fs.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = session.CheckSlug(context.Background(), "@slowpoke")
	}()

	// The newer check resolves first.
	require.NoError(t, session.CheckSlug(context.Background(), "@bob"))
	status := session.SlugStatus()
	require.NotNil(t, status)
	assert.Equal(t, "@bob", status.Slug)

	// Now the older check comes back; it must not overwrite.
	close(release)
	wg.Wait()

	status = session.SlugStatus()
	require.NotNil(t, status)
	assert.Equal(t, "@bob", status.Slug)
	assert.False(t, status.Available)
}

func TestValidate(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	require.NoError(t, session.Validate())

	session.SetTheme("not-a-theme")
	assert.Error(t, session.Validate())
	session.SetTheme("dark")

	session.SetBio(strings.Repeat("x", 201))
	assert.Error(t, session.Validate())
	session.SetBio("ok")

	session.AddLink("myspace", "https://example.com")
	assert.Error(t, session.Validate())
	session.RemoveLink(0)

	session.AddLink("github", strings.Repeat("u", 161))
	assert.Error(t, session.Validate())
	session.RemoveLink(0)

	require.NoError(t, session.Validate())
}

func TestSubmit_WithoutImageLeavesKeyEmpty(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	session.SetBio("updated")
	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.savedBodies, 1)
	assert.Empty(t, fs.savedBodies[0].ImageKey, "no image selected means no key change")
	assert.Equal(t, "updated", fs.savedBodies[0].Bio)
}

func TestSubmit_TwoPhaseUpload(t *testing.T) {
	fs := newFakeServer(t)
	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	imagePath := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("not-really-a-png"), 0o644))
	session.SelectImage(imagePath)

	tree, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "avatars/img-new", tree.ImageKey)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	require.Len(t, fs.uploadedKeys, 1, "direct upload must happen before the save")
	require.Len(t, fs.savedBodies, 1)
	assert.Equal(t, "avatars/img-new", fs.savedBodies[0].ImageKey)
}

func TestSubmit_FailedUploadNeverCommitsKey(t *testing.T) {
	fs := newFakeServer(t)
	fs.uploadStatus = http.StatusForbidden

	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	imagePath := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("payload"), 0o644))
	session.SelectImage(imagePath)

	_, err := session.Submit(context.Background())
	require.Error(t, err)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Empty(t, fs.savedBodies, "save must not run after a failed upload")
}

func TestSubmit_BlockedByUnavailableSlug(t *testing.T) {
	fs := newFakeServer(t)
	fs.slugChecks["@bob"] = service.SlugCheck{
		Available: false,
		Issues:    []string{service.SlugTakenMessage},
	}

	session, _ := newTestSession(t, fs)
	require.NoError(t, session.Load(context.Background()))

	require.NoError(t, session.CheckSlug(context.Background(), "@bob"))
	_, err := session.Submit(context.Background())
	assert.Error(t, err)
}
