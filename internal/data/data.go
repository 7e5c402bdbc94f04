// Package data loads site-wide data files that templates can read as .Data.
package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Load reads every *.yml, *.yaml and *.json file directly inside dir and
// returns their decoded contents keyed by file stem ("nav.yml" -> "nav").
// A missing directory yields an empty map.
func Load(dir string) (map[string]any, error) {
	out := map[string]any{}
	if dir == "" {
		return out, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to read data directory '%s': %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	sources := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yml" && ext != ".yaml" && ext != ".json" {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if prev, ok := sources[stem]; ok {
			return nil, fmt.Errorf("data key '%s' defined by both %s and %s", stem, prev, name)
		}

		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file '%s': %w", path, err)
		}

		value, err := decode(ext, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse data file '%s': %w", path, err)
		}
		out[stem] = value
		sources[stem] = name
	}
	return out, nil
}

func decode(ext string, raw []byte) (any, error) {
	var value any
	if ext == ".json" {
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		return value, nil
	}
	if err := yaml.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return Normalize(value), nil
}
