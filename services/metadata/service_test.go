package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"stremdb/models"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// decodeQuery pulls the GraphQL document and variables out of a request body.
func decodeQuery(t *testing.T, req *http.Request) (string, map[string]any) {
	t.Helper()
	var payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding graphql request: %v", err)
	}
	return payload.Query, payload.Variables
}

func TestGetTitleSeriesPaginatesEpisodes(t *testing.T) {
	var (
		mu        sync.Mutex
		pageCalls []string
	)

	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			defer mu.Unlock()

			if strings.Contains(req.URL.Host, "themoviedb.org") {
				path := req.URL.Path
				if strings.HasPrefix(path, "/3/find/") {
					return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[{"id":99}]}`), nil
				}
				if path == "/3/tv/99/images" {
					return jsonResponse(http.StatusOK, `{"backdrops":[{"file_path":"/bg.png","iso_639_1":null}],"logos":[],"posters":[]}`), nil
				}
				t.Errorf("unhandled tmdb request: %s", path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}

			query, vars := decodeQuery(t, req)
			if strings.Contains(query, "TitleEpisodes") {
				cursor, _ := vars["episodeCursor"].(string)
				pageCalls = append(pageCalls, cursor)
				return jsonResponse(http.StatusOK, `{"data":{"title":{"episodes":{"episodes":{
					"edges":[{"node":{"id":"ep3","series":{"displayableEpisodeNumber":{"displayableSeason":{"season":"1"},"episodeNumber":{"text":"3"}}},"titleText":{"text":"Third"},"releaseDate":{"year":2020,"month":3,"day":1}}}],
					"pageInfo":{"hasNextPage":false,"endCursor":""},
					"total":3
				}}}}}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"title":{
				"id":"tt100",
				"titleText":{"text":"Paged Show"},
				"titleType":{"canHaveEpisodes":true},
				"episodes":{"episodes":{
					"edges":[
						{"node":{"id":"ep1","series":{"displayableEpisodeNumber":{"displayableSeason":{"season":"1"},"episodeNumber":{"text":"1"}}},"titleText":{"text":"First"},"releaseDate":{"year":2020,"month":1,"day":1}}},
						{"node":{"id":"ep2","series":{"displayableEpisodeNumber":{"displayableSeason":{"season":"1"},"episodeNumber":{"text":"2"}}},"titleText":{"text":"Second"},"releaseDate":{"year":2020,"month":2,"day":1}}}
					],
					"pageInfo":{"hasNextPage":true,"endCursor":"c1"},
					"total":3
				}}
			}}}`), nil
		}),
	}

	svc := NewService("test-key", httpc, nil)
	meta, err := svc.GetTitle(context.Background(), models.DefaultSettings(), "tt100")
	if err != nil {
		t.Fatalf("GetTitle failed: %v", err)
	}
	if meta == nil {
		t.Fatal("expected meta")
	}
	if meta.Type != "series" {
		t.Fatalf("expected series, got %s", meta.Type)
	}
	if meta.Videos == nil || len(*meta.Videos) != 3 {
		t.Fatalf("expected 3 videos across pages, got %v", meta.Videos)
	}
	if (*meta.Videos)[2].ID != "tt100:1:3" {
		t.Fatalf("unexpected last video id: %s", (*meta.Videos)[2].ID)
	}
	if meta.Background != "https://image.tmdb.org/t/p/original/bg.png" {
		t.Fatalf("unexpected background: %q", meta.Background)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(pageCalls) != 1 || pageCalls[0] != "c1" {
		t.Fatalf("expected one continuation fetch with cursor c1, got %v", pageCalls)
	}
}

func TestGetTitleNotFound(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Host, "themoviedb.org") {
				return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[]}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"title":null}}`), nil
		}),
	}
	svc := NewService("test-key", httpc, nil)
	meta, err := svc.GetTitle(context.Background(), models.DefaultSettings(), "tt0")
	if err != nil {
		t.Fatalf("GetTitle failed: %v", err)
	}
	if meta != nil {
		t.Fatal("expected nil meta for unknown id")
	}
}

func TestGetTitleEpisodePageFailureIsFatal(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Host, "themoviedb.org") {
				return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[]}`), nil
			}
			query, _ := decodeQuery(t, req)
			if strings.Contains(query, "TitleEpisodes") {
				return jsonResponse(http.StatusNotFound, `{"error":"gone"}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"title":{
				"id":"tt200",
				"titleText":{"text":"Broken Show"},
				"titleType":{"canHaveEpisodes":true},
				"episodes":{"episodes":{
					"edges":[{"node":{"id":"ep1","titleText":{"text":"First"},"releaseDate":{"year":2020}}}],
					"pageInfo":{"hasNextPage":true,"endCursor":"c1"},
					"total":2
				}}
			}}}`), nil
		}),
	}
	svc := NewService("test-key", httpc, nil)
	if _, err := svc.GetTitle(context.Background(), models.DefaultSettings(), "tt200"); err == nil {
		t.Fatal("expected error when a continuation page fails")
	}
}

func TestGetTitleImageFallbackViaConnection(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Host, "themoviedb.org") {
				path := req.URL.Path
				switch {
				case path == "/3/find/tt300":
					return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[]}`), nil
				case path == "/3/find/tt301":
					return jsonResponse(http.StatusOK, `{"movie_results":[{"id":5}],"tv_results":[]}`), nil
				case path == "/3/movie/5/images":
					return jsonResponse(http.StatusOK, `{"backdrops":[],"logos":[{"file_path":"/logo.png","iso_639_1":"en"}],"posters":[]}`), nil
				}
				t.Errorf("unhandled tmdb request: %s", path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"title":{
				"id":"tt300",
				"titleText":{"text":"Folded Title"},
				"titleType":{"canHaveEpisodes":false},
				"connections":{"edges":[{"node":{"associatedTitle":{"id":"tt301"}}}]}
			}}}`), nil
		}),
	}
	svc := NewService("test-key", httpc, nil)
	meta, err := svc.GetTitle(context.Background(), models.DefaultSettings(), "tt300")
	if err != nil {
		t.Fatalf("GetTitle failed: %v", err)
	}
	if meta.Logo != "https://image.tmdb.org/t/p/original/logo.png" {
		t.Fatalf("expected logo from the related title, got %q", meta.Logo)
	}
	if meta.BehaviorHints == nil || meta.BehaviorHints.DefaultVideoID != "tt300" {
		t.Fatal("movie must hint its own id as the default video")
	}
}

func TestSearchHideLowQualityFiltersUnmatched(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Host, "themoviedb.org") {
				path := req.URL.Path
				switch {
				case path == "/3/find/tt1":
					return jsonResponse(http.StatusOK, `{"movie_results":[{"id":1}],"tv_results":[]}`), nil
				case path == "/3/find/tt2", path == "/3/find/tt3":
					return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[]}`), nil
				case path == "/3/find/tt4":
					return jsonResponse(http.StatusOK, `{"movie_results":[],"tv_results":[{"id":2}]}`), nil
				}
				t.Errorf("unhandled tmdb request: %s", path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"mainSearch":{"edges":[
				{"node":{"entity":{"__typename":"Title","id":"tt1","titleText":{"text":"Matched"},"primaryImage":{"url":"https://img/1.png"}}}},
				{"node":{"entity":{"__typename":"Title","id":"tt2","titleText":{"text":"Unmatched"}}}},
				{"node":{"entity":{"__typename":"Title","id":"tt3","titleText":{"text":"Via Connection"},"connections":{"edges":[{"node":{"associatedTitle":{"id":"tt4"}}}]}}}},
				{"node":{"entity":{"__typename":"Name","id":"nm1"}}}
			]}}}`), nil
		}),
	}

	svc := NewService("test-key", httpc, nil)
	settings := models.UserSettings{LanguageCode: "en-US", HideLowQuality: true}
	metas, err := svc.Search(context.Background(), settings, "anything", "movie")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 results after filtering, got %d", len(metas))
	}
	if metas[0].ID != "tt1" || metas[1].ID != "tt3" {
		t.Fatalf("unexpected results or order: %s, %s", metas[0].ID, metas[1].ID)
	}
	if metas[0].Poster != "https://img/1.png" {
		t.Fatalf("unexpected poster: %q", metas[0].Poster)
	}
}

func TestSearchHideLowQualityLookupErrorExcludesCandidateOnly(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Host, "themoviedb.org") {
				path := req.URL.Path
				switch {
				case path == "/3/find/tt1":
					return jsonResponse(http.StatusOK, `{"movie_results":[{"id":1}],"tv_results":[]}`), nil
				case path == "/3/find/tt2":
					return jsonResponse(http.StatusOK, `{"movie_results":[{"id":2}],"tv_results":[]}`), nil
				case path == "/3/find/tt3":
					// Lookup blows up for this one candidate only.
					return jsonResponse(http.StatusNotFound, `{"status_message":"not found"}`), nil
				case path == "/3/find/tt4":
					return jsonResponse(http.StatusOK, `{"movie_results":[{"id":4}],"tv_results":[]}`), nil
				}
				t.Errorf("unhandled tmdb request: %s", path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"mainSearch":{"edges":[
				{"node":{"entity":{"__typename":"Title","id":"tt1","titleText":{"text":"One"}}}},
				{"node":{"entity":{"__typename":"Title","id":"tt2","titleText":{"text":"Two"}}}},
				{"node":{"entity":{"__typename":"Title","id":"tt3","titleText":{"text":"Three"}}}},
				{"node":{"entity":{"__typename":"Title","id":"tt4","titleText":{"text":"Four"}}}}
			]}}}`), nil
		}),
	}

	svc := NewService("test-key", httpc, nil)
	settings := models.UserSettings{LanguageCode: "en-US", HideLowQuality: true}
	metas, err := svc.Search(context.Background(), settings, "anything", "movie")
	if err != nil {
		t.Fatalf("a single candidate's lookup failure must not abort the search: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("expected 3 results, got %d", len(metas))
	}
	for i, want := range []string{"tt1", "tt2", "tt4"} {
		if metas[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, metas[i].ID, want)
		}
	}
}

func TestSearchWithoutFilterKeepsAllTitles(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":{"mainSearch":{"edges":[
				{"node":{"entity":{"__typename":"Title","id":"tt1","titleText":{"text":"One"}}}},
				{"node":{"entity":{"__typename":"Name","id":"nm1"}}},
				{"node":{"entity":{"__typename":"Title","id":"tt2","titleText":{"text":"Two"}}}}
			]}}}`), nil
		}),
	}
	svc := NewService("test-key", httpc, nil)
	metas, err := svc.Search(context.Background(), models.DefaultSettings(), "one", "series")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 results, got %d", len(metas))
	}
	if metas[0].Type != "series" {
		t.Fatalf("expected requested kind on results, got %s", metas[0].Type)
	}
}

func TestSearchEmpty(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":{"mainSearch":{"edges":[]}}}`), nil
		}),
	}
	svc := NewService("test-key", httpc, nil)
	metas, err := svc.Search(context.Background(), models.DefaultSettings(), "nothing", "movie")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if metas == nil || len(metas) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", metas)
	}
}
