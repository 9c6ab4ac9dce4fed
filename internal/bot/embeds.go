package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/ValgulNecron/kasuki/internal/bot/utils"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/steam"
	"github.com/disgoorg/disgo/discord"
)

func errorEmbeds(message string) []discord.Embed {
	return []discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle("Error").
			SetDescription(message).
			SetColor(constants.ErrorEmbedColor).
			Build(),
	}
}

func successEmbeds(title, message string) []discord.Embed {
	return []discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle(title).
			SetDescription(message).
			SetColor(constants.SuccessEmbedColor).
			Build(),
	}
}

// embedColor returns the cover color of an AniList entry or the default color.
func embedColor(image anilist.Image) int {
	if color := anilist.ParseColor(image.Color); color != 0 {
		return color
	}

	return constants.DefaultEmbedColor
}

func orNA(value string) string {
	if value == "" {
		return constants.NotApplicable
	}

	return value
}

func optionalInt(value *int) string {
	if value == nil {
		return constants.NotApplicable
	}

	return strconv.Itoa(*value)
}

func humanize(enumValue string) string {
	if enumValue == "" {
		return constants.NotApplicable
	}

	words := strings.Split(strings.ToLower(enumValue), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}

func mediaRefs(refs []anilist.MediaRef) string {
	titles := make([]string, 0, len(refs))
	for _, ref := range refs {
		titles = append(titles, ref.Title.Preferred())
	}

	return utils.TruncateString(utils.JoinOrDefault(titles, constants.NotApplicable), constants.FieldValueLimit)
}

func mediaEmbed(media *anilist.Media) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle(media.Title.Preferred()).
		SetURL(media.SiteURL).
		SetDescription(anilist.CleanDescription(media.Description, constants.DescriptionLimit)).
		SetColor(embedColor(media.CoverImage)).
		SetThumbnail(media.CoverImage.URL()).
		AddField("Format", humanize(media.Format), true).
		AddField("Status", humanize(media.Status), true)

	if media.Type == anilist.MediaTypeManga {
		builder.
			AddField("Chapters", optionalInt(media.Chapters), true).
			AddField("Volumes", optionalInt(media.Volumes), true)
	} else {
		builder.AddField("Episodes", optionalInt(media.Episodes), true)
	}

	score := constants.NotApplicable
	if media.AverageScore != nil {
		score = fmt.Sprintf("%d/100", *media.AverageScore)
	}

	builder.
		AddField("Score", score, true).
		AddField("Popularity", utils.FormatNumber(int64(media.Popularity)), true).
		AddField("Aired", fmt.Sprintf("%s to %s", media.StartDate, media.EndDate), true).
		AddField("Genres", utils.JoinOrDefault(media.Genres, constants.NotApplicable), false)

	if next := media.NextAiringEpisode; next != nil {
		builder.AddField("Next episode", fmt.Sprintf("Episode %d %s",
			next.Episode, utils.RelativeTimestamp(time.Unix(next.AiringAt, 0))), false)
	}

	if media.BannerImage != "" {
		builder.SetImage(media.BannerImage)
	}

	return builder.Build()
}

func characterEmbed(character *anilist.Character) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(character.Name.Full).
		SetURL(character.SiteURL).
		SetDescription(anilist.CleanDescription(character.Description, constants.DescriptionLimit)).
		SetColor(constants.DefaultEmbedColor).
		SetThumbnail(character.Image.URL()).
		AddField("Native", orNA(character.Name.Native), true).
		AddField("Gender", orNA(character.Gender), true).
		AddField("Age", orNA(character.Age), true).
		AddField("Favourites", utils.FormatNumber(int64(character.Favourites)), true).
		AddField("Appears in", mediaRefs(character.Media.Nodes), false).
		Build()
}

func staffEmbed(staff *anilist.Staff) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(staff.Name.Full).
		SetURL(staff.SiteURL).
		SetDescription(anilist.CleanDescription(staff.Description, constants.DescriptionLimit)).
		SetColor(constants.DefaultEmbedColor).
		SetThumbnail(staff.Image.URL()).
		AddField("Native", orNA(staff.Name.Native), true).
		AddField("Language", orNA(staff.LanguageV2), true).
		AddField("Hometown", orNA(staff.HomeTown), true).
		AddField("Born", staff.DateOfBirth.String(), true).
		AddField("Occupations", utils.JoinOrDefault(staff.PrimaryOccupations, constants.NotApplicable), true).
		AddField("Favourites", utils.FormatNumber(int64(staff.Favourites)), true).
		Build()
}

func studioEmbed(studio *anilist.Studio) discord.Embed {
	kind := "Studio"
	if studio.IsAnimationStudio {
		kind = "Animation studio"
	}

	return discord.NewEmbedBuilder().
		SetTitle(studio.Name).
		SetURL(studio.SiteURL).
		SetDescription(kind).
		SetColor(constants.DefaultEmbedColor).
		AddField("Favourites", utils.FormatNumber(int64(studio.Favourites)), true).
		AddField("Works", mediaRefs(studio.Media.Nodes), false).
		Build()
}

func userEmbed(user *anilist.User) discord.Embed {
	anime := user.Statistics.Anime
	manga := user.Statistics.Manga

	builder := discord.NewEmbedBuilder().
		SetTitle(user.Name).
		SetURL(user.SiteURL).
		SetDescription(anilist.CleanDescription(user.About, constants.DescriptionLimit)).
		SetColor(embedColor(user.Avatar)).
		SetThumbnail(user.Avatar.URL()).
		AddField("Anime", fmt.Sprintf("%d entries\n%d episodes\n%s days watched\nMean score %.1f",
			anime.Count, anime.EpisodesWatched,
			strconv.FormatFloat(float64(anime.MinutesWatched)/1440, 'f', 1, 64), anime.MeanScore), true).
		AddField("Manga", fmt.Sprintf("%d entries\n%d chapters\n%d volumes\nMean score %.1f",
			manga.Count, manga.ChaptersRead, manga.VolumesRead, manga.MeanScore), true)

	if user.BannerImage != "" {
		builder.SetImage(user.BannerImage)
	}

	return builder.Build()
}

func gameEmbed(game *steam.Game) discord.Embed {
	var platforms []string
	if game.Platforms.Windows {
		platforms = append(platforms, "Windows")
	}
	if game.Platforms.Mac {
		platforms = append(platforms, "macOS")
	}
	if game.Platforms.Linux {
		platforms = append(platforms, "Linux")
	}

	release := orNA(game.ReleaseDate.Date)
	if game.ReleaseDate.ComingSoon {
		release += " (coming soon)"
	}

	return discord.NewEmbedBuilder().
		SetTitle(game.Name).
		SetURL(game.StoreURL()).
		SetDescription(utils.TruncateString(game.ShortDescription, constants.DescriptionLimit)).
		SetColor(constants.DefaultEmbedColor).
		SetImage(game.HeaderImage).
		AddField("Price", game.Price(), true).
		AddField("Released", release, true).
		AddField("Platforms", utils.JoinOrDefault(platforms, constants.NotApplicable), true).
		AddField("Developers", utils.JoinOrDefault(game.Developers, constants.NotApplicable), true).
		AddField("Publishers", utils.JoinOrDefault(game.Publishers, constants.NotApplicable), true).
		Build()
}

func imageEmbed(title, url string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(title).
		SetURL(url).
		SetImage(url).
		SetColor(constants.DefaultEmbedColor).
		Build()
}

func answerEmbed(question, answer string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(utils.TruncateString(utils.NormalizeString(question), 256)).
		SetDescription(utils.TruncateString(answer, constants.AnswerLimit)).
		SetColor(constants.DefaultEmbedColor).
		Build()
}

func activityAddedEmbed(media *anilist.Media, delay int64) discord.Embed {
	next := media.NextAiringEpisode
	description := fmt.Sprintf("Episode %d airs %s.", next.Episode,
		utils.RelativeTimestamp(time.Unix(next.AiringAt, 0)))
	if delay > 0 {
		description += fmt.Sprintf(" The notification is sent %d seconds later.", delay)
	}

	return discord.NewEmbedBuilder().
		SetTitle("Now tracking " + media.Title.Preferred()).
		SetURL(media.SiteURL).
		SetDescription(description).
		SetColor(embedColor(media.CoverImage)).
		SetThumbnail(media.CoverImage.URL()).
		Build()
}

func activityListEmbed(records []types.ActivityRecord) discord.Embed {
	if len(records) == 0 {
		return discord.NewEmbedBuilder().
			SetTitle("Tracked anime").
			SetDescription("No anime is tracked in this server.").
			SetColor(constants.DefaultEmbedColor).
			Build()
	}

	var sb strings.Builder
	for i, record := range records {
		if i == constants.MaxActivitiesShown {
			fmt.Fprintf(&sb, "... and %d more", len(records)-i)
			break
		}

		name := record.DisplayName
		if name == "" {
			name = "Anime " + record.SubjectID
		}

		fmt.Fprintf(&sb, "[%s](https://anilist.co/anime/%s) episode %s %s\n",
			name, record.SubjectID, orNA(record.Episode), utils.RelativeTimestamp(time.Unix(record.FireAt, 0)))
	}

	return discord.NewEmbedBuilder().
		SetTitle("Tracked anime").
		SetDescription(sb.String()).
		SetColor(constants.DefaultEmbedColor).
		SetFooterText(fmt.Sprintf("%d tracked", len(records))).
		Build()
}
