package types

import (
	dbTypes "github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
)

// Snapshot is the data written by every export format.
type Snapshot struct {
	Activities []dbTypes.ActivityRecord
	Settings   []dbTypes.GuildSetting
}

// EnabledModules returns the names of the modules enabled in s.
func EnabledModules(s *dbTypes.GuildSetting) []string {
	names := []string{}
	for _, m := range enum.ToggleableModules() {
		if s.IsEnabled(m) {
			names = append(names, m.String())
		}
	}

	return names
}
