// Package roster loads the list of people to greet from YAML:
//
//	people:
//	  - name: Elaina Proctor
//	  - name: Renzo Hume
package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned for a roster without people.
var ErrEmpty = errors.New("roster has no people")

// Entry is one person in the roster file.
type Entry struct {
	Name string `yaml:"name"`
}

type rosterFile struct {
	People []Entry `yaml:"people"`
}

// Load reads a roster file and returns the names in file order.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	names, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return names, nil
}

// Parse decodes roster YAML. Names are trimmed; blank names are an error.
func Parse(data []byte) ([]string, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(f.People) == 0 {
		return nil, ErrEmpty
	}

	names := make([]string, 0, len(f.People))
	for i, p := range f.People {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("entry %d: blank name", i)
		}
		names = append(names, name)
	}
	return names, nil
}
