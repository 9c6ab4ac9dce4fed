package anilist

const mediaFields = `
	id
	type
	format
	status
	title { romaji english native userPreferred }
	description
	episodes
	chapters
	volumes
	averageScore
	popularity
	genres
	siteUrl
	coverImage { extraLarge large color }
	bannerImage
	startDate { year month day }
	endDate { year month day }
	isAdult
	nextAiringEpisode { airingAt timeUntilAiring episode }
`

const searchMediaQuery = `query ($search: String, $type: MediaType) {
	Media(search: $search, type: $type) {` + mediaFields + `}
}`

const mediaByIDQuery = `query ($id: Int, $type: MediaType) {
	Media(id: $id, type: $type) {` + mediaFields + `}
}`

const nextAiringQuery = `query ($id: Int) {
	Media(id: $id, type: ANIME) {
		id
		title { romaji english native userPreferred }
		coverImage { extraLarge large color }
		nextAiringEpisode { airingAt timeUntilAiring episode }
	}
}`

const searchCharacterQuery = `query ($search: String) {
	Character(search: $search) {
		id
		name { full native }
		description
		image { large medium }
		siteUrl
		gender
		age
		favourites
		media(perPage: 5, sort: POPULARITY_DESC) { nodes { id title { romaji english native userPreferred } siteUrl } }
	}
}`

const searchStaffQuery = `query ($search: String) {
	Staff(search: $search) {
		id
		name { full native }
		description
		image { large medium }
		siteUrl
		languageV2
		homeTown
		primaryOccupations
		dateOfBirth { year month day }
		favourites
	}
}`

const searchStudioQuery = `query ($search: String) {
	Studio(search: $search) {
		id
		name
		siteUrl
		isAnimationStudio
		favourites
		media(perPage: 5, sort: POPULARITY_DESC) { nodes { id title { romaji english native userPreferred } siteUrl } }
	}
}`

const searchUserQuery = `query ($search: String) {
	User(search: $search) {
		id
		name
		about
		avatar { large medium }
		bannerImage
		siteUrl
		statistics {
			anime { count meanScore minutesWatched episodesWatched }
			manga { count meanScore chaptersRead volumesRead }
		}
	}
}`

// siteStatisticsQuery takes "anime" or "manga" as its format argument.
const siteStatisticsQuery = `query ($page: Int) {
	SiteStatistics {
		%s(page: $page, perPage: 25, sort: DATE) { pageInfo { hasNextPage } nodes { date count } }
	}
}`
