package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// Minimal IMDb GraphQL client (title detail, episode pages and main search)

const imdbGraphQLEndpoint = "https://api.graphql.imdb.com/"

// The public GraphQL endpoint rejects requests without a browser user agent.
const imdbUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.3"

type imdbClient struct {
	language string
	httpc    *http.Client
}

func newIMDBClient(language string, httpc *http.Client) *imdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &imdbClient{language: language, httpc: httpc}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

// doQuery posts a GraphQL document and decodes the response envelope into v.
// Transient upstream failures (429, 5xx, network errors) are retried with
// backoff; anything else fails immediately.
func (c *imdbClient) doQuery(ctx context.Context, query string, variables map[string]any, v any) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	transient := func(err error) bool {
		var se *statusError
		if errors.As(err, &se) {
			return se.code == http.StatusTooManyRequests || se.code >= 500
		}
		return true // network-level errors
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, imdbGraphQLEndpoint, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("User-Agent", imdbUserAgent)
			if c.language != "" {
				req.Header.Set("Accept-Language", c.language)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				err := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
				if !transient(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}

			var envelope struct {
				Errors []gqlError      `json:"errors"`
				Data   json.RawMessage `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				return retry.Unrecoverable(fmt.Errorf("imdb decode error: %w", err))
			}
			if len(envelope.Errors) > 0 && len(envelope.Data) == 0 {
				return retry.Unrecoverable(fmt.Errorf("imdb graphql error: %s", envelope.Errors[0].Message))
			}
			if err := json.Unmarshal(envelope.Data, v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("imdb decode error: %w", err))
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

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("imdb request failed: status %d: %s", e.code, e.body)
}

const titleQuery = `
query Title($id: ID!, $episodeCursor: ID) {
  title(id: $id) {
    id
    titleText { text isOriginalTitle }
    originalTitleText { text }
    spokenLanguages { spokenLanguages { text } }
    releaseYear { year endYear }
    releaseDate { year month day }
    titleType { canHaveEpisodes }
    plot { plotText { plainText } }
    ratingsSummary { aggregateRating }
    primaryImage { url }
    runtime { displayableProperty { value { plainText } } }
    titleGenres { genres { genre { text } } }
    principalCredits {
      category { id }
      credits { name { id nameText { text } } }
    }
    episodes {
      episodes(first: 250, after: $episodeCursor) {
        edges {
          node {
            id
            series {
              displayableEpisodeNumber {
                displayableSeason { season }
                episodeNumber { text }
              }
            }
            titleText { text }
            plot { plotText { plainText } }
            releaseYear { year }
            releaseDate { year month day }
            primaryImage { url }
          }
        }
        pageInfo { hasNextPage endCursor }
        total
      }
    }
    countriesOfOrigin { countries { text } }
    awardNominations(first: 1000) {
      edges { node { isWinner } }
      total
    }
    externalLinks(first: 10, filter: { categories: ["official"] }) {
      edges { node { url label } }
    }
    connections(first: 1, filter: { categories: ["follows"] }) {
      edges { node { associatedTitle { id } } }
    }
  }
}`

const episodePageQuery = `
query TitleEpisodes($id: ID!, $episodeCursor: ID) {
  title(id: $id) {
    episodes {
      episodes(first: 250, after: $episodeCursor) {
        edges {
          node {
            id
            series {
              displayableEpisodeNumber {
                displayableSeason { season }
                episodeNumber { text }
              }
            }
            titleText { text }
            plot { plotText { plainText } }
            releaseYear { year }
            releaseDate { year month day }
            primaryImage { url }
          }
        }
        pageInfo { hasNextPage endCursor }
        total
      }
    }
  }
}`

const mainSearchQuery = `
query Query($search: MainSearchOptions!) {
  mainSearch(first: 20, options: $search) {
    edges {
      node {
        entity {
          __typename
          ... on Title {
            id
            titleText { text }
            primaryImage { url }
            connections(first: 1, filter: { categories: ["follows"] }) {
              edges { node { associatedTitle { id } } }
            }
          }
        }
      }
    }
  }
}`

// fetchTitle returns the full raw title payload including the first episode
// page. A nil title with nil error means the id resolved to nothing.
func (c *imdbClient) fetchTitle(ctx context.Context, id string) (*rawTitle, error) {
	var data struct {
		Title *rawTitle `json:"title"`
	}
	vars := map[string]any{"id": id, "episodeCursor": nil}
	if err := c.doQuery(ctx, titleQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.Title, nil
}

// fetchEpisodePage returns one continuation page of a series episode list.
func (c *imdbClient) fetchEpisodePage(ctx context.Context, id, cursor string) (*episodePage, error) {
	var data struct {
		Title *struct {
			Episodes *struct {
				Episodes *episodePage `json:"episodes"`
			} `json:"episodes"`
		} `json:"title"`
	}
	vars := map[string]any{"id": id, "episodeCursor": cursor}
	if err := c.doQuery(ctx, episodePageQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Title == nil || data.Title.Episodes == nil || data.Title.Episodes.Episodes == nil {
		return nil, fmt.Errorf("imdb episode page for %s: empty payload", id)
	}
	return data.Title.Episodes.Episodes, nil
}

// mainSearch returns up to 20 ranked title candidates of the requested kind.
func (c *imdbClient) mainSearch(ctx context.Context, text, kind string) ([]searchEntity, error) {
	titleType := "MOVIE"
	if kind == "series" {
		titleType = "TV"
	}
	vars := map[string]any{
		"search": map[string]any{
			"type":       []string{"TITLE"},
			"searchTerm": text,
			"titleSearchOptions": map[string]any{
				"type": []string{titleType},
			},
		},
	}
	var data struct {
		MainSearch *struct {
			Edges []struct {
				Node struct {
					Entity searchEntity `json:"entity"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"mainSearch"`
	}
	if err := c.doQuery(ctx, mainSearchQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.MainSearch == nil {
		return nil, nil
	}
	out := make([]searchEntity, 0, len(data.MainSearch.Edges))
	for _, e := range data.MainSearch.Edges {
		out = append(out, e.Node.Entity)
	}
	return out, nil
}
