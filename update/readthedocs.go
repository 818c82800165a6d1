package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/reenignearcher/pagegate/fetch"
	"github.com/reenignearcher/pagegate/store"
)

const defaultReadTheDocsBaseURL = "https://readthedocs.org"

// ReadTheDocsSource caches the project list and every linked collection
// (versions, builds, translations, ...) per project.
type ReadTheDocsSource struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewReadTheDocsSource creates the ReadTheDocs source.
func NewReadTheDocsSource(client *http.Client, token string) *ReadTheDocsSource {
	return &ReadTheDocsSource{
		client:  client,
		baseURL: defaultReadTheDocsBaseURL,
		token:   token,
	}
}

// Name implements Source.
func (s *ReadTheDocsSource) Name() string {
	return "readthedocs"
}

// Update implements Source.
func (s *ReadTheDocsSource) Update(ctx context.Context, st *store.Store) error {
	results, err := s.fetchAll(ctx, s.baseURL+"/api/v3/projects/", path.Join("readthedocs", "projects"), st)
	if err != nil {
		return err
	}

	for _, raw := range results {
		var project struct {
			Repository struct {
				URL string `json:"url"`
			} `json:"repository"`
			Links map[string]string `json:"_links"`
		}
		if err := json.Unmarshal(raw, &project); err != nil {
			return fmt.Errorf("failed to parse project: %w", err)
		}

		repoName := repoNameFromGitURL(project.Repository.URL)
		if repoName == "" {
			continue
		}

		for link, linkURL := range project.Links {
			relpath := path.Join("readthedocs", link, repoName)
			if _, err := s.fetchAll(ctx, linkURL, relpath, st); err != nil {
				return err
			}
		}
	}

	return nil
}

// fetchAll follows the API's next links, accumulating every page's results.
// The combined results are written to relpath unless empty.
func (s *ReadTheDocsSource) fetchAll(ctx context.Context, startURL, relpath string, st *store.Store) ([]json.RawMessage, error) {
	header := http.Header{"Authorization": []string{"token " + s.token}}

	var results []json.RawMessage
	url := startURL

	for url != "" {
		var page struct {
			Results []json.RawMessage `json:"results"`
			Next    string            `json:"next"`
		}
		if err := fetch.JSON(ctx, s.client, url, header, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}

		results = append(results, page.Results...)
		url = page.Next
	}

	if len(results) == 0 {
		return nil, nil
	}

	if err := st.WriteJSON(relpath, results); err != nil {
		return nil, err
	}
	return results, nil
}

// repoNameFromGitURL extracts the repository name from a clone URL,
// e.g. "https://github.com/lizardbyte/sunshine.git" -> "sunshine".
func repoNameFromGitURL(gitURL string) string {
	if gitURL == "" {
		return ""
	}
	name := gitURL[strings.LastIndex(gitURL, "/")+1:]
	return strings.TrimSuffix(name, ".git")
}
