package update

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/reenignearcher/pagegate/fetch"
	"github.com/reenignearcher/pagegate/github"
	"github.com/reenignearcher/pagegate/store"
)

// GitHubClient is the GitHub API interface used by the GitHub source.
type GitHubClient interface {
	ListUserRepos(ctx context.Context, owner string) ([]*gh.Repository, error)
	ListLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
	OpenGraphImageURL(ctx context.Context, owner, repo string) (string, error)
}

// GitHubSource caches the owner's repository list, per-repository language
// stats, and social preview images.
type GitHubSource struct {
	client     GitHubClient
	httpClient *http.Client
	owner      string
}

// NewGitHubSource creates the GitHub source.
func NewGitHubSource(client GitHubClient, httpClient *http.Client, owner string) *GitHubSource {
	return &GitHubSource{
		client:     client,
		httpClient: httpClient,
		owner:      owner,
	}
}

// Name implements Source.
func (s *GitHubSource) Name() string {
	return "github"
}

// Update implements Source.
func (s *GitHubSource) Update(ctx context.Context, st *store.Store) error {
	repos, err := s.client.ListUserRepos(ctx, s.owner)
	if err != nil {
		return err
	}

	if err := st.WriteJSON(path.Join("github", "repos"), repos); err != nil {
		return err
	}

	for _, repo := range repos {
		name := repo.GetName()

		languages, err := s.client.ListLanguages(ctx, s.owner, name)
		if err != nil {
			return err
		}
		if err := st.WriteJSON(path.Join("github", "languages", name), languages); err != nil {
			return err
		}

		// An invalid token surfaces here as a hard error rather than an
		// empty image set, so the run fails loudly.
		imageURL, err := s.client.OpenGraphImageURL(ctx, s.owner, name)
		if err != nil {
			return err
		}

		// Repositories without a custom social preview fall back to the
		// owner's avatar; those are not worth caching.
		if strings.Contains(imageURL, "avatars") {
			continue
		}

		data, err := fetch.Bytes(ctx, s.httpClient, imageURL)
		if err != nil {
			return fmt.Errorf("failed to download preview image (%s): %w", name, err)
		}
		if err := st.WriteFile(path.Join("github", "openGraphImages", name+".png"), data); err != nil {
			return err
		}
	}

	return nil
}

var _ GitHubClient = (*github.Client)(nil)
