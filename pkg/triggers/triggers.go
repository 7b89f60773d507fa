// Package triggers loads the list of merge-bot command prefixes used to
// attribute bot merges to the human who commanded them. Different
// projects use different merge bots, so the list lives in a YAML file
// rather than in code.
package triggers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults is used when no trigger file is configured. The bors merge
// command is the one the corpus this tool was built against used.
var Defaults = []string{"@bors: r+"}

type triggerFile struct {
	MergeCommands []string `yaml:"merge_commands"`
}

// Load reads merge-command prefixes from a YAML file. A missing file is
// not an error: the defaults are returned so a bare checkout still works.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults, nil
		}
		return nil, fmt.Errorf("failed to read trigger file %s: %w", path, err)
	}

	var parsed triggerFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse trigger file %s: %w", path, err)
	}

	if len(parsed.MergeCommands) == 0 {
		return Defaults, nil
	}
	return parsed.MergeCommands, nil
}
