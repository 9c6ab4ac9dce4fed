package enum

import (
	"errors"
	"fmt"
)

// ErrUnknownModule is returned when a module name cannot be parsed.
var ErrUnknownModule = errors.New("unknown module")

// Module identifies a group of commands that guild admins can toggle.
type Module int

const (
	// ModuleNone marks commands that cannot be disabled.
	ModuleNone Module = iota
	// ModuleAniList covers anime, manga, character, staff, studio and user lookups.
	ModuleAniList
	// ModuleAI covers chat and image generation.
	ModuleAI
	// ModuleGame covers Steam lookups.
	ModuleGame
	// ModuleAnimeActivity covers episode tracking.
	ModuleAnimeActivity
	// ModuleWaifu covers random waifu images.
	ModuleWaifu
)

var moduleNames = map[Module]string{
	ModuleNone:          "none",
	ModuleAniList:       "anilist",
	ModuleAI:            "ai",
	ModuleGame:          "game",
	ModuleAnimeActivity: "anime_activity",
	ModuleWaifu:         "waifu",
}

// String returns the name used in commands and config.
func (m Module) String() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}

	return fmt.Sprintf("Module(%d)", int(m))
}

// ParseModule returns the toggleable module with the given name.
func ParseModule(name string) (Module, error) {
	for m, n := range moduleNames {
		if m != ModuleNone && n == name {
			return m, nil
		}
	}

	return ModuleNone, fmt.Errorf("%w: %s", ErrUnknownModule, name)
}

// ToggleableModules returns every module a guild can enable or disable.
func ToggleableModules() []Module {
	return []Module{ModuleAniList, ModuleAI, ModuleGame, ModuleAnimeActivity, ModuleWaifu}
}
