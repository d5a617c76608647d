package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL   string `yaml:"baseURL" envconfig:"OPENLIBRARY_URL" default:"https://openlibrary.org"`
	CoversURL string `yaml:"coversURL" envconfig:"OPENLIBRARY_COVERS_URL" default:"https://covers.openlibrary.org"`
}

// Client looks up cover images on the Open Library search API.
type Client struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.Named("openlibrary"),
	}
}

type searchResponse struct {
	Docs []struct {
		ISBN   []string `json:"isbn"`
		CoverI int      `json:"cover_i"`
	} `json:"docs"`
}

// FindCover searches by title and author and returns a large cover URL,
// or "" when nothing matches.
func (c *Client) FindCover(ctx context.Context, title, author string) (string, error) {
	params := url.Values{}
	params.Set("q", title+" "+author)
	params.Set("limit", "1")
	searchURL := c.cfg.BaseURL + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "openlibrary search")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("openlibrary search: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", errors.Wrap(err, "decode openlibrary response")
	}
	if len(sr.Docs) == 0 {
		return "", nil
	}

	doc := sr.Docs[0]
	if len(doc.ISBN) > 0 {
		return fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.cfg.CoversURL, doc.ISBN[0]), nil
	}
	if doc.CoverI != 0 {
		return fmt.Sprintf("%s/b/id/%d-L.jpg", c.cfg.CoversURL, doc.CoverI), nil
	}
	c.log.Debug("no cover in first result", zap.String("title", title), zap.String("author", author))
	return "", nil
}
