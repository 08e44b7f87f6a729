package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ToolConfig is dubserve's own optional per-project configuration, read from
// dubserve.toml at the project root. It tunes how the tool runs, not what
// the project builds; everything build-related stays in dub.json.
type ToolConfig struct {
	// Dub is the dub binary to invoke. Empty means "dub" on PATH.
	Dub string `toml:"dub"`
	// Compiler overrides the default compiler selection.
	Compiler string `toml:"compiler"`
	// Cache toggles the on-disk path cache. Defaults to on.
	Cache bool `toml:"cache"`
}

// LoadToolConfig reads dubserve.toml from root. The second return reports
// whether a config file was present; its absence is not an error.
func LoadToolConfig(root string) (ToolConfig, bool, error) {
	cfg := ToolConfig{Cache: true}
	path := filepath.Join(root, "dubserve.toml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ToolConfig{}, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, true, nil
}
