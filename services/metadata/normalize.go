package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stremdb/models"
	"stremdb/utils"
)

// videoIDDelimiter joins (titleID, season, episode) into a video id.
const videoIDDelimiter = ":"

// normalizeTitle folds the raw title payload, the repaired episode list and
// the optional image enrichment into the canonical output record. It is a
// pure function; a nil result means the title has no resolvable display name
// and should surface as "not found".
func normalizeTitle(raw *rawTitle, episodes []numberedEpisode, images *imageSet) *models.Meta {
	if raw == nil || raw.displayName() == "" {
		return nil
	}

	meta := &models.Meta{
		ID:   raw.ID,
		Name: raw.displayName(),
	}

	if raw.canHaveEpisodes() {
		meta.Type = "series"
		videos := buildVideos(raw.ID, episodes)
		meta.Videos = &videos
	} else {
		meta.Type = "movie"
		meta.BehaviorHints = &models.BehaviorHints{DefaultVideoID: raw.ID}
	}

	if raw.OriginalTitleText != nil && raw.OriginalTitleText.Text != "" && raw.OriginalTitleText.Text != meta.Name {
		meta.OriginalName = raw.OriginalTitleText.Text
	}

	if raw.TitleGenres != nil {
		for _, g := range raw.TitleGenres.Genres {
			if g.Genre.Text != "" {
				meta.Genres = append(meta.Genres, g.Genre.Text)
			}
		}
	}

	if raw.PrimaryImage != nil {
		meta.Poster = cleanURL(raw.PrimaryImage.URL)
	}
	if raw.Plot != nil && raw.Plot.PlotText != nil {
		meta.Description = raw.Plot.PlotText.PlainText
	}
	if raw.Runtime != nil {
		meta.Runtime = raw.Runtime.DisplayableProperty.Value.PlainText
	}
	if raw.RatingsSummary != nil && raw.RatingsSummary.AggregateRating != nil {
		meta.IMDBRating = strconv.FormatFloat(*raw.RatingsSummary.AggregateRating, 'f', -1, 64)
	}

	meta.ReleaseInfo = formatReleaseWindow(raw)
	meta.Released = exactReleaseDate(raw.ReleaseDate)

	if raw.SpokenLanguages != nil {
		meta.Language = joinTexts(raw.SpokenLanguages.SpokenLanguages)
	}
	if raw.CountriesOfOrigin != nil {
		meta.Country = joinTexts(raw.CountriesOfOrigin.Countries)
	}

	meta.Director = creditNames(raw.PrincipalCredits, "director")
	meta.Cast = creditNames(raw.PrincipalCredits, "cast")
	meta.Awards = formatAwards(raw)
	meta.Website = selectWebsite(raw)

	if images != nil {
		meta.Background = firstURL(images.Backdrops)
		meta.Logo = firstURL(images.Logos)
	}

	return meta
}

// buildVideos converts repaired episode entries into output video records.
// Entries missing a title or a release year are incomplete upstream records
// and are dropped.
func buildVideos(titleID string, episodes []numberedEpisode) []models.Video {
	videos := make([]models.Video, 0, len(episodes))
	for _, ep := range episodes {
		n := ep.node
		if n.TitleText == nil || n.TitleText.Text == "" {
			continue
		}
		if n.ReleaseDate == nil || n.ReleaseDate.Year == 0 {
			continue
		}
		v := models.Video{
			ID:       strings.Join([]string{titleID, strconv.Itoa(ep.season), strconv.Itoa(ep.episode)}, videoIDDelimiter),
			Title:    n.TitleText.Text,
			Released: episodeReleaseDate(n.ReleaseDate),
			Season:   ep.season,
			Episode:  ep.episode,
		}
		if n.PrimaryImage != nil {
			v.Thumbnail = cleanURL(n.PrimaryImage.URL)
		}
		if n.Plot != nil && n.Plot.PlotText != nil {
			v.Overview = n.Plot.PlotText.PlainText
		}
		videos = append(videos, v)
	}
	return videos
}

// episodeReleaseDate builds a release date from a possibly year-only record:
// a missing month defaults to December, a missing day to the 31st, so a
// year-only release still yields a valid date.
func episodeReleaseDate(d *rawDate) time.Time {
	month := 12
	if d.Month != nil {
		month = *d.Month
	}
	day := 31
	if d.Day != nil {
		day = *d.Day
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// exactReleaseDate returns the precise release date only when the provider
// reported all three components.
func exactReleaseDate(d *rawDate) *time.Time {
	if d == nil || d.Year == 0 || d.Month == nil || d.Day == nil {
		return nil
	}
	t := time.Date(d.Year, time.Month(*d.Month), *d.Day, 0, 0, 0, 0, time.UTC)
	return &t
}

// formatReleaseWindow renders the release years as a single year, an open
// range ("2010-") or a closed range ("2010-2015").
func formatReleaseWindow(raw *rawTitle) string {
	ry := raw.ReleaseYear
	if ry == nil || ry.Year == 0 {
		return ""
	}
	if ry.EndYear != nil && *ry.EndYear == ry.Year {
		return strconv.Itoa(ry.Year)
	}
	if ry.EndYear == nil {
		return fmt.Sprintf("%d-", ry.Year)
	}
	return fmt.Sprintf("%d-%d", ry.Year, *ry.EndYear)
}

// formatAwards summarizes award nominations as wins and nominations with
// pluralization; both non-zero are joined with "& ... total".
func formatAwards(raw *rawTitle) string {
	if raw.AwardNominations == nil || len(raw.AwardNominations.Edges) == 0 {
		return ""
	}
	wins := 0
	for _, e := range raw.AwardNominations.Edges {
		if e.Node.IsWinner {
			wins++
		}
	}
	noms := len(raw.AwardNominations.Edges) - wins

	winStr := pluralize(wins, "win")
	nomStr := pluralize(noms, "nomination")
	if winStr != "" && nomStr != "" {
		return winStr + " & " + nomStr + " total"
	}
	if winStr != "" {
		return winStr
	}
	return nomStr
}

func pluralize(n int, noun string) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 " + noun
	default:
		return fmt.Sprintf("%d %ss", n, noun)
	}
}

// selectWebsite prefers the external link labeled "Official site", falling
// back to the first available link.
func selectWebsite(raw *rawTitle) string {
	if raw.ExternalLinks == nil || len(raw.ExternalLinks.Edges) == 0 {
		return ""
	}
	for _, e := range raw.ExternalLinks.Edges {
		if e.Node.Label == "Official site" {
			return cleanURL(e.Node.URL)
		}
	}
	return cleanURL(raw.ExternalLinks.Edges[0].Node.URL)
}

func joinTexts(values []textValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v.Text != "" {
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, ", ")
}

// creditNames extracts the display names for one principal credit category.
func creditNames(credits []principalCredit, categoryID string) []string {
	for _, pc := range credits {
		if pc.Category.ID != categoryID {
			continue
		}
		names := make([]string, 0, len(pc.Credits))
		for _, c := range pc.Credits {
			if c.Name.NameText != nil && c.Name.NameText.Text != "" {
				names = append(names, c.Name.NameText.Text)
			}
		}
		return names
	}
	return nil
}

// cleanURL re-encodes upstream URLs that occasionally carry raw spaces.
func cleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	encoded, err := utils.EncodeURLWithSpaces(raw)
	if err != nil {
		return raw
	}
	return encoded
}
