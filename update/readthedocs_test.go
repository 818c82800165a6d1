package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/reenignearcher/pagegate/store"
)

func TestReadTheDocsSource_Update(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string

	mux.HandleFunc("/api/v3/projects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token rtd-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Two pages linked by next.
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprintf(w, `{
				"results": [{
					"slug": "sunshine",
					"repository": {"url": "https://github.com/lizardbyte/sunshine.git"},
					"_links": {"versions": "%s/api/v3/projects/sunshine/versions/"}
				}],
				"next": "%s/api/v3/projects/?offset=1"
			}`, srvURL, srvURL)
			return
		}
		fmt.Fprint(w, `{"results": [{"slug": "themebuilder", "repository": {"url": ""}, "_links": {}}], "next": null}`)
	})
	mux.HandleFunc("/api/v3/projects/sunshine/versions/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"slug": "latest"}], "next": null}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	src := NewReadTheDocsSource(srv.Client(), "rtd-token")
	src.baseURL = srv.URL

	dir := t.TempDir()
	if err := src.Update(context.Background(), store.New(dir, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both pages are combined into one projects artifact.
	data, err := os.ReadFile(filepath.Join(dir, "readthedocs", "projects.json"))
	if err != nil {
		t.Fatalf("projects artifact not written: %v", err)
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Errorf("projects = %d, want 2 (paginated results combined)", len(projects))
	}

	// Linked collections are written per repository name.
	if _, err := os.Stat(filepath.Join(dir, "readthedocs", "versions", "sunshine.json")); err != nil {
		t.Errorf("versions artifact not written: %v", err)
	}
}

func TestReadTheDocsSource_EmptyResultsWriteNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [], "next": null}`)
	}))
	defer srv.Close()

	src := NewReadTheDocsSource(srv.Client(), "rtd-token")
	src.baseURL = srv.URL

	dir := t.TempDir()
	if err := src.Update(context.Background(), store.New(dir, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "readthedocs", "projects.json")); !os.IsNotExist(err) {
		t.Error("empty result set should not produce an artifact")
	}
}

func TestRepoNameFromGitURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/lizardbyte/sunshine.git", "sunshine"},
		{"https://github.com/lizardbyte/sunshine", "sunshine"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := repoNameFromGitURL(tt.url); got != tt.want {
			t.Errorf("repoNameFromGitURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
