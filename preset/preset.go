// Package preset loads CMake configure presets and resolves the MSVC
// toolset version through the preset inheritance graph.
//
// Presets come from CMakePresets.json and CMakeUserPresets.json at the
// project root. Both documents are optional; a missing or malformed
// document contributes no presets rather than failing the load, so the
// resolver stays usable with partial configuration.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document names read from the project root, in order.
// Later documents overwrite earlier entries of the same preset name,
// which is how CMakeUserPresets.json overrides the checked-in presets.
var documentNames = []string{
	"CMakePresets.json",
	"CMakeUserPresets.json",
}

// Preset is one configurePresets entry. Only the fields relevant to
// toolset resolution are decoded; everything else belongs to cmake.
type Preset struct {
	Name     string       `json:"name"`
	Inherits InheritsList `json:"inherits"`
	Toolset  ToolsetField `json:"toolset"`
}

// Graph maps preset name to preset record. Lookups for unknown names
// return ok=false rather than failing.
type Graph map[string]Preset

// document mirrors the top-level shape of a CMake presets file.
type document struct {
	ConfigurePresets []Preset `json:"configurePresets"`
}

// InheritsList normalizes the CMake "inherits" field, which may be a
// single string or a list of strings, into a list. Declaration order is
// preserved: it defines parent precedence during toolset resolution.
type InheritsList []string

// UnmarshalJSON accepts either a JSON string or a JSON string array.
func (l *InheritsList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = InheritsList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("inherits must be a string or string list: %w", err)
	}
	*l = InheritsList(many)
	return nil
}

// ToolsetField normalizes the CMake "toolset" field, which may be a
// bare string ("v143,version=14.40") or an object with a "value" key.
type ToolsetField struct {
	Value string
}

// UnmarshalJSON accepts either a JSON string or an object {"value": s}.
func (t *ToolsetField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("toolset must be a string or an object with a value key: %w", err)
	}
	t.Value = obj.Value
	return nil
}

// Load reads the preset documents under rootDir and builds the graph.
// A document that is missing or fails to parse is skipped; last write
// wins for duplicate preset names across documents.
func Load(rootDir string) Graph {
	graph := make(Graph)
	for _, name := range documentNames {
		doc, err := readDocument(filepath.Join(rootDir, name))
		if err != nil {
			continue
		}
		for _, p := range doc.ConfigurePresets {
			if p.Name == "" {
				continue
			}
			graph[p.Name] = p
		}
	}
	return graph
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid presets document %s: %w", path, err)
	}
	return &doc, nil
}
