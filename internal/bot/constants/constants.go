package constants

const (
	// Commands.
	AnimeCommandName     = "anime"
	MangaCommandName     = "manga"
	CharacterCommandName = "character"
	StaffCommandName     = "staff"
	StudioCommandName    = "studio"
	UserCommandName      = "user"
	RandomCommandName    = "random"
	SteamCommandName     = "steam"
	AICommandName        = "ai"
	WaifuCommandName     = "waifu"
	ActivityCommandName  = "activity"
	AdminCommandName     = "admin"
	PingCommandName      = "ping"

	// Subcommands.
	SteamGameSubcommand      = "game"
	AIQuestionSubcommand     = "question"
	AIImageSubcommand        = "image"
	ActivityAddSubcommand    = "add"
	ActivityDeleteSubcommand = "delete"
	ActivityListSubcommand   = "list"
	AdminLangSubcommand      = "lang"
	AdminModuleSubcommand    = "module"
	AdminWebhookSubcommand   = "webhook"

	// Options.
	NameOption     = "name"
	TypeOption     = "type"
	PromptOption   = "prompt"
	CategoryOption = "category"
	AnimeOption    = "anime"
	DelayOption    = "delay"
	TagOption      = "tag"
	StateOption    = "state"
	URLOption      = "url"

	// Common.
	NotApplicable     = "N/A"
	DefaultEmbedColor = 0x02A9FF
	ErrorEmbedColor   = 0xE74C3C
	SuccessEmbedColor = 0x2ECC71

	// Limits.
	DescriptionLimit   = 1500
	AnswerLimit        = 4000
	FieldValueLimit    = 1024
	MaxActivityDelay   = 86400
	MaxActivitiesShown = 25
)
