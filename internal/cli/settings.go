package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mweller/operant/internal/input"
)

// Settings represents the optional TOML settings file.
//
// Everything here has a working default; the file exists so lab machines can
// pin a database location and tune input timing without editing configs.
type Settings struct {
	Database       *string `toml:"database"`
	PollIntervalMS *int    `toml:"poll-interval-ms"`
	DebounceMS     *int    `toml:"debounce-ms"`
}

// EffectiveSettings is Settings with defaults applied.
type EffectiveSettings struct {
	Database     string
	PollInterval time.Duration
	Debounce     time.Duration
}

const defaultDatabase = "operant.db"

// LoadSettings reads a TOML settings file. An empty path or a missing file
// is not an error; defaults apply.
func LoadSettings(path string) (EffectiveSettings, error) {
	eff := EffectiveSettings{
		Database:     defaultDatabase,
		PollInterval: input.DefaultPollInterval,
		Debounce:     input.DefaultDebounceWindow,
	}

	if path == "" {
		return eff, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return eff, nil
		}
		return eff, fmt.Errorf("failed to stat settings: %w", err)
	}

	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return eff, fmt.Errorf("failed to decode settings: %w", err)
	}

	if s.Database != nil && *s.Database != "" {
		eff.Database = *s.Database
	}
	if s.PollIntervalMS != nil && *s.PollIntervalMS > 0 {
		eff.PollInterval = time.Duration(*s.PollIntervalMS) * time.Millisecond
	}
	if s.DebounceMS != nil && *s.DebounceMS >= 0 {
		eff.Debounce = time.Duration(*s.DebounceMS) * time.Millisecond
	}

	return eff, nil
}
