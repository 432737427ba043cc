package metadata

import (
	"context"
	"log"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"stremdb/models"
	"stremdb/services/matchstore"
)

// searchMatchConcurrency bounds the per-candidate match checks during search
// quality filtering.
const searchMatchConcurrency = 8

// Service aggregates title metadata from the IMDb GraphQL API and artwork
// from TMDB into addon-protocol records. Upstream clients are constructed
// per request, bound to the caller's language preference, so no request ever
// observes another's state.
type Service struct {
	tmdbAPIKey string
	httpc      *http.Client
	store      matchstore.Store

	// In-memory memo of recent match results, in front of the optional
	// persistent store.
	matchMemo *gocache.Cache
}

func NewService(tmdbAPIKey string, httpc *http.Client, store matchstore.Store) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if store == nil {
		store = matchstore.NoopStore{}
	}
	return &Service{
		tmdbAPIKey: tmdbAPIKey,
		httpc:      httpc,
		store:      store,
		matchMemo:  gocache.New(6*time.Hour, 30*time.Minute),
	}
}

// GetTitle fetches, merges and normalizes one title. A nil meta with nil
// error means the id resolved to nothing; the handler maps that to a
// not-found response.
func (s *Service) GetTitle(ctx context.Context, settings models.UserSettings, id string) (*models.Meta, error) {
	imdb := newIMDBClient(settings.LanguageCode, s.httpc)
	tmdb := newTMDBClient(s.tmdbAPIKey, settings.LanguageCode, s.httpc)

	// The title detail and the image enrichment are independent fetches;
	// join both before normalizing.
	var (
		title    *rawTitle
		titleErr error
		images   *imageSet
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		title, titleErr = imdb.fetchTitle(ctx, id)
	})
	wg.Go(func() {
		images = s.fetchImages(ctx, tmdb, id, false, settings.LanguageCode)
	})
	wg.Wait()

	if titleErr != nil {
		return nil, titleErr
	}
	if title == nil || title.displayName() == "" {
		return nil, nil
	}

	// The display id may not match anything on TMDB when the title is folded
	// into a larger entry upstream; retry once against the related title.
	if images == nil {
		if connID := title.connectionID(); connID != "" {
			images = s.fetchImages(ctx, tmdb, connID, true, settings.LanguageCode)
		}
	}

	var episodes []numberedEpisode
	if title.canHaveEpisodes() {
		var first *episodePage
		if title.Episodes != nil {
			first = title.Episodes.Episodes
		}
		edges, err := paginateEpisodes(ctx, imdb, id, first)
		if err != nil {
			return nil, err
		}
		episodes = repairEpisodeNumbers(edges)
		log.Printf("[metadata] %s: %d episode edges across pagination, %d after repair", id, len(edges), len(episodes))
	}

	return normalizeTitle(title, episodes, images), nil
}

// Search returns lightweight metas for the ranked search candidates of the
// requested kind, preserving upstream order. When the caller's settings ask
// for quality filtering, candidates with no TMDB cross-reference are
// dropped; a per-candidate lookup failure excludes that candidate only.
func (s *Service) Search(ctx context.Context, settings models.UserSettings, query, kind string) ([]models.Meta, error) {
	imdb := newIMDBClient(settings.LanguageCode, s.httpc)

	entities, err := imdb.mainSearch(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return []models.Meta{}, nil
	}

	results := make([]*models.Meta, len(entities))

	if settings.HideLowQuality {
		tmdb := newTMDBClient(s.tmdbAPIKey, settings.LanguageCode, s.httpc)
		p := pool.New().WithMaxGoroutines(searchMatchConcurrency)
		for i := range entities {
			ent := entities[i]
			if !ent.isTitle() {
				continue
			}
			i := i
			p.Go(func() {
				m, err := s.matchWithFallback(ctx, tmdb, ent.ID, ent.connectionID())
				if err != nil {
					log.Printf("[metadata] search match check failed for %s: %v", ent.ID, err)
					return
				}
				if m.Empty() {
					return
				}
				results[i] = searchMeta(&ent, kind)
			})
		}
		p.Wait()
	} else {
		for i := range entities {
			if entities[i].isTitle() {
				results[i] = searchMeta(&entities[i], kind)
			}
		}
	}

	out := make([]models.Meta, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// searchMeta builds the summary record for one search candidate.
func searchMeta(ent *searchEntity, kind string) *models.Meta {
	meta := &models.Meta{
		ID:   ent.ID,
		Type: kind,
		Name: ent.TitleText.Text,
	}
	if ent.PrimaryImage != nil {
		meta.Poster = ent.PrimaryImage.URL
	}
	return meta
}
