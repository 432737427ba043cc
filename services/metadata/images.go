package metadata

import (
	"context"
	"log"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/language"

	"stremdb/services/matchstore"
)

// MatchResult is the outcome of cross-referencing an IMDb id against TMDB.
// At most one of MovieID/SeriesID is set; both zero means no match, which is
// a legitimate outcome rather than an error.
type MatchResult struct {
	MovieID  int64
	SeriesID int64
}

func (m MatchResult) Empty() bool {
	return m.MovieID == 0 && m.SeriesID == 0
}

// imageSet holds the provider's image variants for one matched title, each
// list ordered by the language preference cascade.
type imageSet struct {
	Backdrops []imageVariant
	Logos     []imageVariant
	Posters   []imageVariant
}

type imageVariant struct {
	URL      string
	Language string // "" for untagged variants
}

// matchTitle resolves an IMDb id to a TMDB id. Movie results win over TV
// results when both exist. recordOnMiss controls whether an explicit
// no-match is persisted; callers that still have a fallback id to try pass
// false so the miss is not recorded prematurely.
func (s *Service) matchTitle(ctx context.Context, tmdb *tmdbClient, imdbID string, recordOnMiss bool) (MatchResult, error) {
	if cached, ok := s.matchMemo.Get(imdbID); ok {
		return cached.(MatchResult), nil
	}

	if stored, err := s.store.FindMatch(ctx, imdbID); err != nil {
		log.Printf("[match] store lookup failed for %s: %v", imdbID, err)
	} else if stored != nil {
		m := MatchResult{}
		switch stored.Kind {
		case matchstore.KindMovie:
			m.MovieID = stored.TMDBID
		case matchstore.KindSeries:
			m.SeriesID = stored.TMDBID
		}
		s.matchMemo.Set(imdbID, m, gocache.DefaultExpiration)
		return m, nil
	}

	resp, err := tmdb.findByExternalID(ctx, imdbID)
	if err != nil {
		return MatchResult{}, err
	}

	var m MatchResult
	if len(resp.MovieResults) > 0 {
		m.MovieID = resp.MovieResults[0].ID
	} else if len(resp.TVResults) > 0 {
		m.SeriesID = resp.TVResults[0].ID
	}

	switch {
	case m.MovieID != 0:
		s.recordMatch(ctx, imdbID, matchstore.Match{TMDBID: m.MovieID, Kind: matchstore.KindMovie})
	case m.SeriesID != 0:
		s.recordMatch(ctx, imdbID, matchstore.Match{TMDBID: m.SeriesID, Kind: matchstore.KindSeries})
	case recordOnMiss:
		s.recordMatch(ctx, imdbID, matchstore.Match{Kind: matchstore.KindNone})
	}

	s.matchMemo.Set(imdbID, m, gocache.DefaultExpiration)
	return m, nil
}

// matchWithFallback tries the primary id, then the related-title id exactly
// once. Deeper connection chains are not chased.
func (s *Service) matchWithFallback(ctx context.Context, tmdb *tmdbClient, imdbID, fallbackID string) (MatchResult, error) {
	m, err := s.matchTitle(ctx, tmdb, imdbID, fallbackID == "")
	if err != nil {
		return MatchResult{}, err
	}
	if m.Empty() && fallbackID != "" {
		return s.matchTitle(ctx, tmdb, fallbackID, true)
	}
	return m, nil
}

func (s *Service) recordMatch(ctx context.Context, imdbID string, m matchstore.Match) {
	if err := s.store.RecordMatch(ctx, imdbID, m); err != nil {
		log.Printf("[match] failed to record match for %s: %v", imdbID, err)
	}
}

// selectImages fetches the image sets for a matched title and orders each
// list by the caller's language preference. An empty match returns nil
// without fetching.
func (s *Service) selectImages(ctx context.Context, tmdb *tmdbClient, m MatchResult, languageTag string) (*imageSet, error) {
	if m.Empty() {
		return nil, nil
	}

	var (
		raw *tmdbImageSet
		err error
	)
	if m.MovieID != 0 {
		raw, err = tmdb.movieImages(ctx, m.MovieID)
	} else {
		raw, err = tmdb.tvImages(ctx, m.SeriesID)
	}
	if err != nil {
		return nil, err
	}

	return &imageSet{
		Backdrops: sortImagesByLanguage(raw.Backdrops, languageTag),
		Logos:     sortImagesByLanguage(raw.Logos, languageTag),
		Posters:   sortImagesByLanguage(raw.Posters, languageTag),
	}, nil
}

// fetchImages is the best-effort enrichment path: match, then select. Any
// failure degrades to "no images" for the caller.
func (s *Service) fetchImages(ctx context.Context, tmdb *tmdbClient, imdbID string, recordOnMiss bool, languageTag string) *imageSet {
	m, err := s.matchTitle(ctx, tmdb, imdbID, recordOnMiss)
	if err != nil {
		log.Printf("[images] match lookup failed for %s: %v", imdbID, err)
		return nil
	}
	set, err := s.selectImages(ctx, tmdb, m, languageTag)
	if err != nil {
		log.Printf("[images] image fetch failed for %s: %v", imdbID, err)
		return nil
	}
	return set
}

// sortImagesByLanguage orders variants by the preference cascade: exact tag
// match, then base-language match, then English, then everything else in its
// original relative order. The sort is stable.
func sortImagesByLanguage(images []tmdbImage, preferred string) []imageVariant {
	out := make([]imageVariant, len(images))
	for i, img := range images {
		out[i] = imageVariant{URL: img.url(), Language: img.languageTag()}
	}
	prefBase := baseLanguage(preferred)
	rank := func(v imageVariant) int {
		switch {
		case v.Language != "" && strings.EqualFold(v.Language, preferred):
			return 0
		case v.Language != "" && baseLanguage(v.Language) == prefBase:
			return 1
		case strings.EqualFold(v.Language, "en"):
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// baseLanguage extracts the base language from a BCP 47 tag ("es-MX" → "es").
func baseLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		if b, conf := t.Base(); conf > language.No {
			return b.String()
		}
	}
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}

// firstURL returns the URL of the first variant, "" when the list is empty.
func firstURL(variants []imageVariant) string {
	if len(variants) == 0 {
		return ""
	}
	return variants[0].URL
}
