package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/list.conf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# title\n.example.com\nfoo.example.org\n\nbad_host.net\n"))
	})
	mux.HandleFunc("/list.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["Example.com", ".cdn.example.net", 42, "", "203.0.113.5"]`))
	})
	mux.HandleFunc("/object.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"domains": []}`))
	})
	mux.HandleFunc("/empty.conf", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/comments.conf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# nothing here\n! still nothing\n"))
	})
	mux.HandleFunc("/fail.conf", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["a.com" 1]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchDomainset(t *testing.T) {
	srv := newListServer(t)

	b, err := NewClient().Fetch(context.Background(), Source{Name: "conf", URL: srv.URL + "/list.conf", Format: FormatDomainset})
	require.NoError(t, err)
	assert.Equal(t, []string{".example.com", "foo.example.org"}, b.Entries)
	assert.Equal(t, map[string]int{skipUnderscore: 1}, b.Skipped)
}

func TestClient_FetchJSON(t *testing.T) {
	srv := newListServer(t)

	b, err := NewClient().Fetch(context.Background(), Source{Name: "json", URL: srv.URL + "/list.json", Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", ".cdn.example.net"}, b.Entries)
	assert.Equal(t, map[string]int{skipNotString: 1, skipIP: 1}, b.Skipped)
}

func TestClient_FetchErrors(t *testing.T) {
	srv := newListServer(t)
	c := NewClient()
	ctx := context.Background()

	_, err := c.Fetch(ctx, Source{Name: "missing", URL: srv.URL + "/missing.conf"})
	assert.ErrorContains(t, err, "unexpected status")

	_, err = c.Fetch(ctx, Source{Name: "object", URL: srv.URL + "/object.json", Format: FormatJSON})
	assert.ErrorContains(t, err, "expected JSON array")

	_, err = c.Fetch(ctx, Source{Name: "broken", URL: srv.URL + "/broken.json", Format: FormatJSON})
	assert.Error(t, err)

	_, err = c.Fetch(ctx, Source{Name: "nofile", URL: filepath.Join(t.TempDir(), "nope.conf")})
	assert.ErrorContains(t, err, "open source")
}

func TestClient_FetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.conf")
	require.NoError(t, os.WriteFile(path, []byte("local.example.com\n! comment\n*.wild.example.com\n"), 0o644))

	for _, u := range []string{path, "file://" + path} {
		b, err := NewClient().Fetch(context.Background(), Source{Name: "local", URL: u, Format: FormatDomainset})
		require.NoError(t, err)
		assert.Equal(t, []string{"local.example.com", ".wild.example.com"}, b.Entries)
	}
}

func TestClient_FetchEmptyBody(t *testing.T) {
	srv := newListServer(t)
	c := NewClient()
	ctx := context.Background()

	for _, path := range []string{"/empty.conf", "/comments.conf"} {
		_, err := c.Fetch(ctx, Source{Name: "empty", URL: srv.URL + path, Format: FormatDomainset, Kind: KindBlock})
		assert.ErrorIs(t, err, ErrEmptySource, path)
	}

	b, err := c.Fetch(ctx, Source{Name: "empty", URL: srv.URL + "/empty.conf", Format: FormatDomainset, Kind: KindBlock, AllowEmpty: true})
	require.NoError(t, err)
	assert.Empty(t, b.Entries)

	b, err = c.Fetch(ctx, Source{Name: "allow", URL: srv.URL + "/empty.conf", Format: FormatDomainset, Kind: KindAllow})
	require.NoError(t, err)
	assert.Empty(t, b.Entries)
}

func TestClient_FetchMirrors(t *testing.T) {
	srv := newListServer(t)
	c := NewClient()
	ctx := context.Background()

	src := Source{
		Name:    "mirrored",
		URL:     srv.URL + "/fail.conf",
		Mirrors: []string{srv.URL + "/empty.conf", srv.URL + "/list.conf"},
		Format:  FormatDomainset,
		Kind:    KindBlock,
	}
	b, err := c.Fetch(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, []string{".example.com", "foo.example.org"}, b.Entries)

	src.Mirrors = []string{srv.URL + "/missing.conf"}
	_, err = c.Fetch(ctx, src)
	assert.ErrorContains(t, err, "unexpected status")
}
