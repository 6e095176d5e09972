package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset maps a short news identifier to a named feed URL.
type Preset struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

func builtinPresets() map[string]Preset {
	return map[string]Preset{
		"bbc":         {Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/rss.xml"},
		"cnn":         {Name: "CNN", URL: "http://rss.cnn.com/rss/edition.rss"},
		"nytimes":     {Name: "The New York Times", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
		"guardian":    {Name: "The Guardian", URL: "https://www.theguardian.com/world/rss"},
		"verge":       {Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
		"arstechnica": {Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
		"wired":       {Name: "Wired", URL: "https://www.wired.com/feed/rss"},
		"techcrunch":  {Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
	}
}

// LoadPresets returns the built-in news catalog, extended or overridden by
// the entries of an optional YAML file. An empty path yields the builtins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := builtinPresets()

	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}

	var loaded map[string]Preset
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse presets file: %w", err)
	}

	for key, preset := range loaded {
		if preset.URL == "" {
			return nil, fmt.Errorf("preset %q is missing a url", key)
		}
		if preset.Name == "" {
			preset.Name = key
		}
		presets[key] = preset
	}

	return presets, nil
}
