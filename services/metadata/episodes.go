package metadata

import (
	"context"
	"fmt"
	"strconv"
)

// unknownNumberText is how the provider flags an unreported season or
// episode number.
const unknownNumberText = "unknown"

// numberedEpisode is an episode edge with its final season/episode numbers,
// either as reported upstream or synthesized by repairEpisodeNumbers.
type numberedEpisode struct {
	node    episodeNode
	season  int
	episode int
}

// paginateEpisodes walks the episode continuation cursor until the provider
// reports no further pages, accumulating every edge. Pages are strictly
// sequential: each request needs the previous page's cursor. Any page
// failure aborts the walk; a partial list must never be passed off as the
// complete one.
func paginateEpisodes(ctx context.Context, c *imdbClient, titleID string, first *episodePage) ([]episodeEdge, error) {
	if first == nil {
		return nil, nil
	}
	edges := make([]episodeEdge, 0, first.Total)
	edges = append(edges, first.Edges...)

	page := first
	for page.PageInfo.HasNextPage {
		next, err := c.fetchEpisodePage(ctx, titleID, page.PageInfo.EndCursor)
		if err != nil {
			return nil, fmt.Errorf("episode page after %q for %s: %w", page.PageInfo.EndCursor, titleID, err)
		}
		edges = append(edges, next.Edges...)
		page = next
	}
	return edges, nil
}

// repairEpisodeNumbers partitions edges into known-numbered entries (season
// and episode both reported) and unknown-numbered ones. Unknown entries are
// assigned season 0 with sequential episode numbers in first-seen order,
// skipping any number genuinely reported in season 0 elsewhere in the list.
// Known entries keep their reported numbers and relative order.
func repairEpisodeNumbers(edges []episodeEdge) []numberedEpisode {
	out := make([]numberedEpisode, 0, len(edges))

	// First pass: fix the known partition and note reported season-0 numbers.
	type slot struct {
		known   bool
		season  int
		episode int
	}
	slots := make([]slot, len(edges))
	usedInSeasonZero := make(map[int]bool)
	for i, e := range edges {
		season, sOK := parseReportedNumber(e.Node.seasonText())
		episode, eOK := parseReportedNumber(e.Node.episodeText())
		if sOK && eOK {
			slots[i] = slot{known: true, season: season, episode: episode}
			if season == 0 {
				usedInSeasonZero[episode] = true
			}
		}
	}

	// Second pass: hand out synthetic numbers to the unknown partition.
	next := 1
	for i, e := range edges {
		if slots[i].known {
			out = append(out, numberedEpisode{node: e.Node, season: slots[i].season, episode: slots[i].episode})
			continue
		}
		for usedInSeasonZero[next] {
			next++
		}
		out = append(out, numberedEpisode{node: e.Node, season: 0, episode: next})
		next++
	}
	return out
}

// parseReportedNumber parses a season/episode string from the provider. The
// provider reports "unknown" (or omits the field entirely) for entries it
// cannot number.
func parseReportedNumber(text string) (int, bool) {
	if text == "" || text == unknownNumberText {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
