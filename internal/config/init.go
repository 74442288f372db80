package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrExists = errors.New("configuration file already exists")

const template = `# mend configuration. Values shown are the defaults.

[format]
# "tab", "spaces" or "auto" (detected from the edited file)
indent = "auto"
tab_width = 4

[assist]
# rule ids that are never offered, e.g. ["rename-local"]
disabled = []
# 0 means no cap
max_proposals = 0

[assist.relevance]
# "add-block" = 12

[naming]
field_prefix = ""
static_prefix = ""
local_prefix = ""
# "upper" (MAX_SIZE) or "camel" (maxSize)
constant_style = "upper"

[cache]
enabled = false
dir = ".mend-cache"

[trace]
# off, error, phase, detail or debug
level = "off"
output = ""
`

// Template returns the commented default file written by Init.
func Template() string { return template }

// Init writes the default configuration into dir. An existing file is kept
// unless force is set.
func Init(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, ErrExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
