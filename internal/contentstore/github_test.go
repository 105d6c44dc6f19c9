package contentstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/repos/acme/flows/contents/workflows", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %q", got)
		}
		fmt.Fprint(w, `[
			{"type": "file", "name": "deploy.ds.md", "path": "workflows/deploy.ds.md", "download_url": "https://raw.example/deploy.ds.md"},
			{"type": "dir", "name": "ops", "path": "workflows/ops", "download_url": null},
			{"type": "symlink", "name": "link", "path": "workflows/link"}
		]`)
	})
	mux.HandleFunc("/repos/acme/flows/contents/workflows/deploy.ds.md", func(w http.ResponseWriter, r *http.Request) {
		enc := base64.StdEncoding.EncodeToString([]byte("---\ntitle: Deploy\n---\nbody"))
		fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "content": "%s\n"}`, enc)
	})
	mux.HandleFunc("/repos/acme/flows/contents/workflows/big.ds.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type": "file", "encoding": "none", "content": "", "download_url": "%s/raw/big.ds.md"}`, srv.URL)
	})
	mux.HandleFunc("/raw/big.ds.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "large body")
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHub(t *testing.T, baseURL string) *GitHub {
	t.Helper()
	g, err := NewGitHub(GitHubOptions{Owner: "acme", Repo: "flows", Ref: "main", Token: "secret", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewGitHub() error: %v", err)
	}
	return g
}

func TestGitHubList(t *testing.T) {
	srv := newGitHubServer(t)
	g := newTestGitHub(t, srv.URL)

	entries, err := g.List(context.Background(), "workflows")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() = %+v, want file and dir only", entries)
	}
	if entries[0].Type != TypeFile || entries[0].DownloadURL != "https://raw.example/deploy.ds.md" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Type != TypeDir || entries[1].Path != "workflows/ops" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestGitHubFetch(t *testing.T) {
	srv := newGitHubServer(t)
	g := newTestGitHub(t, srv.URL)
	ctx := context.Background()

	data, err := g.Fetch(ctx, "workflows/deploy.ds.md")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "---\ntitle: Deploy\n---\nbody" {
		t.Errorf("Fetch() = %q", data)
	}

	data, err = g.Fetch(ctx, "workflows/big.ds.md")
	if err != nil {
		t.Fatalf("Fetch(big) error: %v", err)
	}
	if string(data) != "large body" {
		t.Errorf("Fetch(big) = %q", data)
	}
}

func TestGitHubNotFound(t *testing.T) {
	srv := newGitHubServer(t)
	g := newTestGitHub(t, srv.URL)

	if _, err := g.List(context.Background(), "missing"); !errors.Is(err, ErrNotExist) {
		t.Errorf("List() error = %v, want ErrNotExist", err)
	}
}

func TestGitHubServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()
	g := newTestGitHub(t, srv.URL)

	_, err := g.List(context.Background(), "workflows")
	if err == nil || errors.Is(err, ErrNotExist) {
		t.Fatalf("List() error = %v, want status error", err)
	}
}

func TestNewGitHubRequiresRepo(t *testing.T) {
	if _, err := NewGitHub(GitHubOptions{Owner: "acme"}); err == nil {
		t.Fatal("NewGitHub() without repo should fail")
	}
}
