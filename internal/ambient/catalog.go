// Package ambient serves the catalog of background sounds. Playback happens
// in the client; the server only knows titles and asset paths.
package ambient

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Tomlord1122/lofi-playground/internal/api"
)

//go:embed sounds.yaml
var defaultCatalog []byte

type catalogFile struct {
	Sounds []api.Sound `yaml:"sounds"`
}

// Catalog is an immutable list of sounds.
type Catalog struct {
	sounds []api.Sound
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse reads a YAML catalog. Every sound needs a title and an href.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sound catalog: %w", err)
	}
	if len(f.Sounds) == 0 {
		return nil, errors.New("sound catalog is empty")
	}
	seen := make(map[string]bool, len(f.Sounds))
	for i, s := range f.Sounds {
		if s.Title == "" || s.Href == "" {
			return nil, fmt.Errorf("sound %d: title and href are required", i)
		}
		if seen[s.Title] {
			return nil, fmt.Errorf("sound %q listed twice", s.Title)
		}
		seen[s.Title] = true
	}
	return &Catalog{sounds: f.Sounds}, nil
}

// All returns a copy of the sounds in catalog order.
func (c *Catalog) All() []api.Sound {
	if c == nil {
		return []api.Sound{}
	}
	out := make([]api.Sound, len(c.sounds))
	copy(out, c.sounds)
	return out
}
