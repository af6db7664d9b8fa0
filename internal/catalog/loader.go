package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile loads one catalog document. JSON and YAML are accepted; YAML is
// decoded generically and re-marshaled through JSON so both share one parse
// path. The document may be a full OpenAPI-style document (operations under
// "paths") or a bare path -> verb -> operation map.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Catalog{}, fmt.Errorf("failed to parse YAML catalog %s: %w", path, err)
		}
		data, err = json.Marshal(raw)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to convert YAML catalog %s: %w", path, err)
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cat, err := parseDocument(name, data)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadDir loads every .json/.yaml/.yml document in a directory. A document
// that fails to load or parse is skipped with a warning; one bad input never
// fails the batch. Files are visited in sorted name order.
func LoadDir(dir string) ([]Catalog, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var catalogs []Catalog
	var warnings []string
	for _, name := range names {
		cat, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped catalog %s: %v", name, err))
			continue
		}
		catalogs = append(catalogs, cat)
	}
	return catalogs, warnings, nil
}

// parseDocument decodes catalog JSON into a Catalog.
func parseDocument(name string, data []byte) (Catalog, error) {
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Catalog{}, err
	}

	raw := doc.Paths
	if len(raw) == 0 {
		// Bare path -> verb -> operation map with no "paths" wrapper.
		var flat map[string]map[string]json.RawMessage
		if err := json.Unmarshal(data, &flat); err == nil {
			raw = make(map[string]map[string]json.RawMessage)
			for path, verbs := range flat {
				if strings.HasPrefix(path, "/") {
					raw[path] = verbs
				}
			}
		}
	}
	if len(raw) == 0 {
		return Catalog{}, fmt.Errorf("document contains no operations")
	}

	cat := Catalog{Name: name, Paths: make(map[string]PathOperations, len(raw))}
	if doc.Info.Title != "" {
		cat.Name = doc.Info.Title
	}
	for path, verbs := range raw {
		ops := PathOperations{}
		for verb, msg := range verbs {
			// The verb-less path-level parameter block is not an operation.
			if strings.ToLower(verb) == "parameters" {
				continue
			}
			var op Operation
			if err := json.Unmarshal(msg, &op); err != nil {
				return Catalog{}, fmt.Errorf("invalid operation %s %s: %w", verb, path, err)
			}
			ops[strings.ToLower(verb)] = &op
		}
		if len(ops) > 0 {
			cat.Paths[path] = ops
		}
	}
	return cat, nil
}
