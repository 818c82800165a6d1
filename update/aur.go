package update

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/reenignearcher/pagegate/fetch"
	"github.com/reenignearcher/pagegate/store"
)

const defaultAURBaseURL = "https://aur.archlinux.org"

// AURSource caches AUR RPC package info as aur/<pkg>.json.
type AURSource struct {
	client   *http.Client
	baseURL  string
	packages []string
}

// NewAURSource creates the AUR source for the given package names.
func NewAURSource(client *http.Client, packages []string) *AURSource {
	return &AURSource{
		client:   client,
		baseURL:  defaultAURBaseURL,
		packages: packages,
	}
}

// Name implements Source.
func (s *AURSource) Name() string {
	return "aur"
}

// Update implements Source.
func (s *AURSource) Update(ctx context.Context, st *store.Store) error {
	for _, pkg := range s.packages {
		endpoint := fmt.Sprintf("%s/rpc?v=5&type=info&arg=%s", s.baseURL, url.QueryEscape(pkg))

		var data any
		if err := fetch.JSON(ctx, s.client, endpoint, nil, &data); err != nil {
			return fmt.Errorf("failed to fetch aur info (%s): %w", pkg, err)
		}

		if err := st.WriteJSON(path.Join("aur", pkg), data); err != nil {
			return err
		}
	}
	return nil
}
