package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Minimal TMDB v3 client (external-id cross reference and image sets)

const (
	tmdbAPIBaseURL   = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/original"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{apiKey: apiKey, language: language, httpc: httpc}
}

func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	endpoint := tmdbAPIBaseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				err := fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return err
				}
				return retry.Unrecoverable(err)
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb decode error: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type tmdbFindResponse struct {
	MovieResults []tmdbFindResult `json:"movie_results"`
	TVResults    []tmdbFindResult `json:"tv_results"`
}

type tmdbFindResult struct {
	ID int64 `json:"id"`
}

// findByExternalID cross-references an IMDb id against the TMDB catalog.
func (c *tmdbClient) findByExternalID(ctx context.Context, imdbID string) (*tmdbFindResponse, error) {
	q := url.Values{}
	q.Set("external_source", "imdb_id")
	var resp tmdbFindResponse
	if err := c.doGET(ctx, "/find/"+url.PathEscape(imdbID), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type tmdbImageSet struct {
	Backdrops []tmdbImage `json:"backdrops"`
	Logos     []tmdbImage `json:"logos"`
	Posters   []tmdbImage `json:"posters"`
}

type tmdbImage struct {
	FilePath string  `json:"file_path"`
	ISO639   *string `json:"iso_639_1"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// languageTag returns the image language tag, "" when untagged.
func (i tmdbImage) languageTag() string {
	if i.ISO639 == nil {
		return ""
	}
	return *i.ISO639
}

// url builds the full CDN URL for the image.
func (i tmdbImage) url() string {
	return tmdbImageBaseURL + i.FilePath
}

func (c *tmdbClient) imageQuery() url.Values {
	q := url.Values{}
	// Ask for the user's language plus the fallbacks the selector ranks
	langs := []string{"en", "null"}
	if c.language != "" {
		langs = append([]string{c.language, baseLanguage(c.language)}, langs...)
	}
	q.Set("include_image_language", strings.Join(dedupeStrings(langs), ","))
	return q
}

// movieImages fetches the image variants for a matched movie.
func (c *tmdbClient) movieImages(ctx context.Context, id int64) (*tmdbImageSet, error) {
	var resp tmdbImageSet
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%d/images", id), c.imageQuery(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// tvImages fetches the image variants for a matched series.
func (c *tmdbClient) tvImages(ctx context.Context, id int64) (*tmdbImageSet, error) {
	var resp tmdbImageSet
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/images", id), c.imageQuery(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
