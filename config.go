package genetic_screen

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// SearchConfig carries the Search invocation parameters.
type SearchConfig struct {
	Steps   int  `toml:"steps"`
	Repeat  int  `toml:"repeat"`
	Verbose bool `toml:"verbose"`
}

// ToolConfig is what the cmd tools load from disk. Persistence is optional;
// a run without it simply isn't recorded.
type ToolConfig struct {
	Algorithm   *AlgorithmConfig   `toml:"algorithm"`
	Search      *SearchConfig      `toml:"search"`
	Persistence *PersistenceConfig `toml:"persistence"`
}

func LoadToolConfig(path string) (*ToolConfig, error) {
	conffile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config %s: %w", path, err)
	}
	defer conffile.Close()

	var config ToolConfig
	if _, err := toml.NewDecoder(conffile).Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}

	if config.Algorithm == nil {
		return nil, fmt.Errorf("config %s has no [algorithm] section", path)
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Search.Steps < 1 {
		config.Search.Steps = 100
	}
	if config.Search.Repeat < 1 {
		config.Search.Repeat = 5
	}

	return &config, nil
}
