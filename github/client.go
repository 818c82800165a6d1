package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gh "github.com/google/go-github/v68/github"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// ErrInvalidToken is returned when the GitHub token is rejected.
var ErrInvalidToken = errors.New("github token is invalid")

// Client is a GitHub API client.
type Client struct {
	gh         *gh.Client
	httpClient *http.Client
	graphqlURL string
}

// NewClient creates a new GitHub client authenticated with a personal
// access token.
func NewClient(token string, timeout time.Duration) *Client {
	httpClient := newHTTPClient(token, timeout)

	return &Client{
		gh:         gh.NewClient(httpClient),
		httpClient: httpClient,
		graphqlURL: defaultGraphQLURL,
	}
}

// ListUserRepos returns all public repositories of a user.
func (c *Client) ListUserRepos(ctx context.Context, owner string) ([]*gh.Repository, error) {
	var repos []*gh.Repository
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	for {
		result, resp, err := c.gh.Repositories.ListByUser(ctx, owner, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories (%s): %w", owner, err)
		}

		repos = append(repos, result...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// ListLanguages returns the language byte counts of a repository.
func (c *Client) ListLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	languages, _, err := c.gh.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages (%s/%s): %w", owner, repo, err)
	}
	return languages, nil
}

// OpenGraphImageURL returns the social preview image URL of a repository
// via the GraphQL API, which does not expose it over REST.
func (c *Client) OpenGraphImageURL(ctx context.Context, owner, repo string) (string, error) {
	query := struct {
		Query     string            `json:"query"`
		Variables map[string]string `json:"variables"`
	}{
		Query:     `query($owner: String!, $name: String!) { repository(owner: $owner, name: $name) { openGraphImageUrl } }`,
		Variables: map[string]string{"owner": owner, "name": repo},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to marshal graphql query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("graphql request failed (status=%d): %s", resp.StatusCode, msg)
	}

	var result struct {
		Data struct {
			Repository *struct {
				OpenGraphImageURL string `json:"openGraphImageUrl"`
			} `json:"repository"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode graphql response: %w", err)
	}

	// A 200 without repository data means the token lacks access.
	if result.Data.Repository == nil {
		return "", ErrInvalidToken
	}

	return result.Data.Repository.OpenGraphImageURL, nil
}
