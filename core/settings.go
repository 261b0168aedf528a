package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// Settings holds the tunable parameters of a fleet engine (§4.11, §4.12).
// The zero value is not directly usable; DefaultSettings returns one that
// is.
type Settings struct {
	ShowRobotState bool

	Debug struct {
		ShowPathWalking   bool
		ShowCompleteAreas bool
		FastDeconstruct   bool
	}

	Robot struct {
		// EndOfTaskWaitTicks is how long WalkToLocation waits after a
		// pathfinder timeout before retrying (§4.5).
		EndOfTaskWaitTicks int
	}
}

// DefaultSettings returns the settings a freshly created Engine uses when
// none are supplied.
func DefaultSettings() *Settings {
	s := &Settings{ShowRobotState: true}
	s.Robot.EndOfTaskWaitTicks = 60
	return s
}

func (s *Settings) withDefaults() {
	if s.Robot.EndOfTaskWaitTicks <= 0 {
		s.Robot.EndOfTaskWaitTicks = 60
	}
}

// LoadSettings reads settings from a TOML file at path, returning
// DefaultSettings (and writing them out) if the file does not yet exist.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, s.Save(path)
		}
		return nil, fmt.Errorf("fleetcore: read settings: %w", err)
	}
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, s); err != nil {
			return nil, fmt.Errorf("fleetcore: decode settings: %w", err)
		}
	}
	s.withDefaults()
	return s, nil
}

// Save writes s to path as TOML, creating its parent directory if needed.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("fleetcore: create settings directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(*s)
	if err != nil {
		return fmt.Errorf("fleetcore: encode settings: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("fleetcore: write settings: %w", err)
	}
	return nil
}
