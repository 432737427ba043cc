package metadata

// Typed views over the IMDb GraphQL payloads. Only the fields the queries
// request are modeled; everything optional upstream is a pointer.

type textValue struct {
	Text string `json:"text"`
}

type rawDate struct {
	Year  int  `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

type rawTitle struct {
	ID                string     `json:"id"`
	TitleText         *textValue `json:"titleText"`
	OriginalTitleText *textValue `json:"originalTitleText"`
	SpokenLanguages   *struct {
		SpokenLanguages []textValue `json:"spokenLanguages"`
	} `json:"spokenLanguages"`
	ReleaseYear *struct {
		Year    int  `json:"year"`
		EndYear *int `json:"endYear"`
	} `json:"releaseYear"`
	ReleaseDate *rawDate `json:"releaseDate"`
	TitleType   *struct {
		CanHaveEpisodes bool `json:"canHaveEpisodes"`
	} `json:"titleType"`
	Plot *struct {
		PlotText *struct {
			PlainText string `json:"plainText"`
		} `json:"plotText"`
	} `json:"plot"`
	RatingsSummary *struct {
		AggregateRating *float64 `json:"aggregateRating"`
	} `json:"ratingsSummary"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
	Runtime *struct {
		DisplayableProperty struct {
			Value struct {
				PlainText string `json:"plainText"`
			} `json:"value"`
		} `json:"displayableProperty"`
	} `json:"runtime"`
	TitleGenres *struct {
		Genres []struct {
			Genre textValue `json:"genre"`
		} `json:"genres"`
	} `json:"titleGenres"`
	PrincipalCredits []principalCredit `json:"principalCredits"`
	Episodes         *struct {
		Episodes *episodePage `json:"episodes"`
	} `json:"episodes"`
	CountriesOfOrigin *struct {
		Countries []textValue `json:"countries"`
	} `json:"countriesOfOrigin"`
	AwardNominations *struct {
		Edges []struct {
			Node struct {
				IsWinner bool `json:"isWinner"`
			} `json:"node"`
		} `json:"edges"`
		Total int `json:"total"`
	} `json:"awardNominations"`
	ExternalLinks *struct {
		Edges []struct {
			Node struct {
				URL   string `json:"url"`
				Label string `json:"label"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"externalLinks"`
	Connections *struct {
		Edges []struct {
			Node struct {
				AssociatedTitle struct {
					ID string `json:"id"`
				} `json:"associatedTitle"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"connections"`
}

type principalCredit struct {
	Category struct {
		ID string `json:"id"`
	} `json:"category"`
	Credits []struct {
		Name struct {
			ID       string     `json:"id"`
			NameText *textValue `json:"nameText"`
		} `json:"name"`
	} `json:"credits"`
}

// canHaveEpisodes reports whether the provider marks this title as episodic.
func (t *rawTitle) canHaveEpisodes() bool {
	return t.TitleType != nil && t.TitleType.CanHaveEpisodes
}

// displayName returns the resolvable name, or "" when the title is unusable.
func (t *rawTitle) displayName() string {
	if t.TitleText == nil {
		return ""
	}
	return t.TitleText.Text
}

// connectionID returns the id of the single "follows" connection, if any.
func (t *rawTitle) connectionID() string {
	if t.Connections == nil || len(t.Connections.Edges) == 0 {
		return ""
	}
	return t.Connections.Edges[0].Node.AssociatedTitle.ID
}

type episodePage struct {
	Edges    []episodeEdge `json:"edges"`
	PageInfo pageInfo      `json:"pageInfo"`
	Total    int           `json:"total"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type episodeEdge struct {
	Node episodeNode `json:"node"`
}

type episodeNode struct {
	ID     string `json:"id"`
	Series *struct {
		DisplayableEpisodeNumber *struct {
			DisplayableSeason *struct {
				Season string `json:"season"`
			} `json:"displayableSeason"`
			EpisodeNumber *struct {
				Text string `json:"text"`
			} `json:"episodeNumber"`
		} `json:"displayableEpisodeNumber"`
	} `json:"series"`
	TitleText *textValue `json:"titleText"`
	Plot      *struct {
		PlotText *struct {
			PlainText string `json:"plainText"`
		} `json:"plotText"`
	} `json:"plot"`
	ReleaseYear *struct {
		Year *int `json:"year"`
	} `json:"releaseYear"`
	ReleaseDate  *rawDate `json:"releaseDate"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
}

// seasonText returns the reported season string, "" when unreported.
func (n *episodeNode) seasonText() string {
	if n.Series == nil || n.Series.DisplayableEpisodeNumber == nil || n.Series.DisplayableEpisodeNumber.DisplayableSeason == nil {
		return ""
	}
	return n.Series.DisplayableEpisodeNumber.DisplayableSeason.Season
}

// episodeText returns the reported episode number string, "" when unreported.
func (n *episodeNode) episodeText() string {
	if n.Series == nil || n.Series.DisplayableEpisodeNumber == nil || n.Series.DisplayableEpisodeNumber.EpisodeNumber == nil {
		return ""
	}
	return n.Series.DisplayableEpisodeNumber.EpisodeNumber.Text
}

// searchEntity is one entry from the main search union. The search endpoint
// can return entities other than titles; Typename discriminates the closed
// set and everything except "Title" is skipped by callers.
type searchEntity struct {
	Typename     string     `json:"__typename"`
	ID           string     `json:"id"`
	TitleText    *textValue `json:"titleText"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
	Connections *struct {
		Edges []struct {
			Node struct {
				AssociatedTitle struct {
					ID string `json:"id"`
				} `json:"associatedTitle"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"connections"`
}

func (e *searchEntity) isTitle() bool {
	return e.Typename == "Title" && e.TitleText != nil && e.TitleText.Text != ""
}

func (e *searchEntity) connectionID() string {
	if e.Connections == nil || len(e.Connections.Edges) == 0 {
		return ""
	}
	return e.Connections.Edges[0].Node.AssociatedTitle.ID
}
