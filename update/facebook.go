package update

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/reenignearcher/pagegate/config"
	"github.com/reenignearcher/pagegate/fetch"
	"github.com/reenignearcher/pagegate/store"
)

const defaultFacebookBaseURL = "https://graph.facebook.com"

// FacebookSource caches Graph API group and page metrics as
// facebook/group.json and facebook/page.json.
type FacebookSource struct {
	client  *http.Client
	baseURL string
	cfg     config.FacebookConfig
}

// NewFacebookSource creates the Facebook source.
func NewFacebookSource(client *http.Client, cfg config.FacebookConfig) *FacebookSource {
	return &FacebookSource{
		client:  client,
		baseURL: defaultFacebookBaseURL,
		cfg:     cfg,
	}
}

// Name implements Source.
func (s *FacebookSource) Name() string {
	return "facebook"
}

// Update implements Source.
func (s *FacebookSource) Update(ctx context.Context, st *store.Store) error {
	endpoints := map[string]string{
		"group": fmt.Sprintf("%s/%s?fields=member_count,name,description&access_token=%s",
			s.baseURL, url.PathEscape(s.cfg.GroupID), url.QueryEscape(s.cfg.Token)),
		"page": fmt.Sprintf("%s/%s/insights?metric=page_fans&access_token=%s",
			s.baseURL, url.PathEscape(s.cfg.PageID), url.QueryEscape(s.cfg.Token)),
	}

	for name, endpoint := range endpoints {
		var data any
		if err := fetch.JSON(ctx, s.client, endpoint, nil, &data); err != nil {
			return fmt.Errorf("failed to fetch facebook %s: %w", name, err)
		}

		if err := st.WriteJSON(path.Join("facebook", name), data); err != nil {
			return err
		}
	}
	return nil
}
