package anilist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MediaType is the AniList media type enum.
type MediaType string

const (
	MediaTypeAnime MediaType = "ANIME"
	MediaTypeManga MediaType = "MANGA"
)

// Title holds the localized titles of a media.
type Title struct {
	Romaji        string `json:"romaji"`
	English       string `json:"english"`
	Native        string `json:"native"`
	UserPreferred string `json:"userPreferred"`
}

// Preferred returns the first non-empty title.
func (t Title) Preferred() string {
	for _, title := range []string{t.UserPreferred, t.English, t.Romaji, t.Native} {
		if title != "" {
			return title
		}
	}

	return ""
}

// FuzzyDate is a date where any part may be unknown.
type FuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// String formats the known parts as YYYY-MM-DD.
func (d FuzzyDate) String() string {
	if d.Year == nil {
		return "?"
	}

	out := strconv.Itoa(*d.Year)
	if d.Month != nil {
		out += fmt.Sprintf("-%02d", *d.Month)

		if d.Day != nil {
			out += fmt.Sprintf("-%02d", *d.Day)
		}
	}

	return out
}

// Image holds cover or avatar URLs.
type Image struct {
	ExtraLarge string `json:"extraLarge"`
	Large      string `json:"large"`
	Medium     string `json:"medium"`
	Color      string `json:"color"`
}

// URL returns the largest available image.
func (i Image) URL() string {
	switch {
	case i.ExtraLarge != "":
		return i.ExtraLarge
	case i.Large != "":
		return i.Large
	default:
		return i.Medium
	}
}

// AiringEpisode is a scheduled episode broadcast.
type AiringEpisode struct {
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring"`
	Episode         int   `json:"episode"`
}

// MediaRef is a short reference to a media.
type MediaRef struct {
	ID      int    `json:"id"`
	Title   Title  `json:"title"`
	SiteURL string `json:"siteUrl"`
}

// Media is an anime or manga.
type Media struct {
	ID                int            `json:"id"`
	Type              MediaType      `json:"type"`
	Format            string         `json:"format"`
	Status            string         `json:"status"`
	Title             Title          `json:"title"`
	Description       string         `json:"description"`
	Episodes          *int           `json:"episodes"`
	Chapters          *int           `json:"chapters"`
	Volumes           *int           `json:"volumes"`
	AverageScore      *int           `json:"averageScore"`
	Popularity        int            `json:"popularity"`
	Genres            []string       `json:"genres"`
	SiteURL           string         `json:"siteUrl"`
	CoverImage        Image          `json:"coverImage"`
	BannerImage       string         `json:"bannerImage"`
	StartDate         FuzzyDate      `json:"startDate"`
	EndDate           FuzzyDate      `json:"endDate"`
	IsAdult           bool           `json:"isAdult"`
	NextAiringEpisode *AiringEpisode `json:"nextAiringEpisode"`
}

// Name holds a person's names.
type Name struct {
	Full   string `json:"full"`
	Native string `json:"native"`
}

// Character is a fictional character.
type Character struct {
	ID          int    `json:"id"`
	Name        Name   `json:"name"`
	Description string `json:"description"`
	Image       Image  `json:"image"`
	SiteURL     string `json:"siteUrl"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Favourites  int    `json:"favourites"`
	Media       struct {
		Nodes []MediaRef `json:"nodes"`
	} `json:"media"`
}

// Staff is a real person credited on media.
type Staff struct {
	ID                 int       `json:"id"`
	Name               Name      `json:"name"`
	Description        string    `json:"description"`
	Image              Image     `json:"image"`
	SiteURL            string    `json:"siteUrl"`
	LanguageV2         string    `json:"languageV2"`
	HomeTown           string    `json:"homeTown"`
	PrimaryOccupations []string  `json:"primaryOccupations"`
	DateOfBirth        FuzzyDate `json:"dateOfBirth"`
	Favourites         int       `json:"favourites"`
}

// Studio is an animation studio.
type Studio struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	SiteURL           string `json:"siteUrl"`
	IsAnimationStudio bool   `json:"isAnimationStudio"`
	Favourites        int    `json:"favourites"`
	Media             struct {
		Nodes []MediaRef `json:"nodes"`
	} `json:"media"`
}

// ListStatistics summarizes a user's anime or manga list.
type ListStatistics struct {
	Count           int     `json:"count"`
	MeanScore       float64 `json:"meanScore"`
	MinutesWatched  int     `json:"minutesWatched"`
	EpisodesWatched int     `json:"episodesWatched"`
	ChaptersRead    int     `json:"chaptersRead"`
	VolumesRead     int     `json:"volumesRead"`
}

// User is an AniList account.
type User struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	About       string `json:"about"`
	Avatar      Image  `json:"avatar"`
	BannerImage string `json:"bannerImage"`
	SiteURL     string `json:"siteUrl"`
	Statistics  struct {
		Anime ListStatistics `json:"anime"`
		Manga ListStatistics `json:"manga"`
	} `json:"statistics"`
}

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
	spoilerPattern   = regexp.MustCompile(`(?s)~!.*?!~`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// CleanDescription turns AniList's HTML and markdown description into plain
// text and truncates it to limit runes.
func CleanDescription(description string, limit int) string {
	text := strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "&quot;", `"`, "&amp;", "&").
		Replace(description)
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = spoilerPattern.ReplaceAllString(text, "||spoiler||")
	text = blankLinePattern.ReplaceAllString(strings.TrimSpace(text), "\n\n")

	runes := []rune(text)
	if limit > 3 && len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}

	return text
}

// ParseColor converts a "#rrggbb" color into an integer, or 0 if it is invalid.
func ParseColor(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}

	return int(v)
}
