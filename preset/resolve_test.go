package preset_test

import (
	"testing"

	"github.com/justapithecus/masonry/preset"
)

// graph builds a Graph from literal presets without touching the filesystem.
func graph(presets ...preset.Preset) preset.Graph {
	g := make(preset.Graph, len(presets))
	for _, p := range presets {
		g[p.Name] = p
	}
	return g
}

func TestResolveToolset_Inherited(t *testing.T) {
	g := graph(
		preset.Preset{Name: "A", Toolset: preset.ToolsetField{Value: "version=14.40"}},
		preset.Preset{Name: "B", Inherits: preset.InheritsList{"A"}},
	)

	if v, ok := g.ResolveToolset("B"); !ok || v != "14.40" {
		t.Errorf("ResolveToolset(B) = %q, %v; want 14.40", v, ok)
	}
	if v, ok := g.ResolveToolset("A"); !ok || v != "14.40" {
		t.Errorf("ResolveToolset(A) = %q, %v; want 14.40", v, ok)
	}
}

func TestResolveToolset_UnknownPreset(t *testing.T) {
	g := graph(preset.Preset{Name: "A"})
	if v, ok := g.ResolveToolset("missing"); ok {
		t.Errorf("expected no result for unknown preset, got %q", v)
	}
}

func TestResolveToolset_CycleTerminates(t *testing.T) {
	g := graph(
		preset.Preset{Name: "C", Inherits: preset.InheritsList{"D"}},
		preset.Preset{Name: "D", Inherits: preset.InheritsList{"C"}},
	)

	// Must terminate without a result, not loop forever.
	if v, ok := g.ResolveToolset("C"); ok {
		t.Errorf("expected no result for toolset-less cycle, got %q", v)
	}
}

func TestResolveToolset_OwnValueWinsOverInherited(t *testing.T) {
	g := graph(
		preset.Preset{Name: "parent", Toolset: preset.ToolsetField{Value: "version=14.38"}},
		preset.Preset{
			Name:     "child",
			Inherits: preset.InheritsList{"parent"},
			Toolset:  preset.ToolsetField{Value: "version=14.40"},
		},
	)

	if v, ok := g.ResolveToolset("child"); !ok || v != "14.40" {
		t.Errorf("ResolveToolset(child) = %q, %v; want own value 14.40", v, ok)
	}
}

func TestResolveToolset_FirstParentWins(t *testing.T) {
	g := graph(
		preset.Preset{Name: "first", Toolset: preset.ToolsetField{Value: "version=14.40"}},
		preset.Preset{Name: "second", Toolset: preset.ToolsetField{Value: "version=14.38"}},
		preset.Preset{Name: "child", Inherits: preset.InheritsList{"first", "second"}},
	)

	if v, ok := g.ResolveToolset("child"); !ok || v != "14.40" {
		t.Errorf("ResolveToolset(child) = %q, %v; want first parent's 14.40", v, ok)
	}
}

func TestResolveToolset_DeepChain(t *testing.T) {
	g := graph(
		preset.Preset{Name: "root", Toolset: preset.ToolsetField{Value: "v143,version=14.40"}},
		preset.Preset{Name: "mid", Inherits: preset.InheritsList{"root"}},
		preset.Preset{Name: "leaf", Inherits: preset.InheritsList{"mid"}},
	)

	if v, ok := g.ResolveToolset("leaf"); !ok || v != "14.40" {
		t.Errorf("ResolveToolset(leaf) = %q, %v; want 14.40", v, ok)
	}
}

func TestResolveToolset_ValueForms(t *testing.T) {
	tests := []struct {
		name    string
		toolset string
		want    string
		wantOK  bool
	}{
		{"version fragment", "v143,version=14.40", "14.40", true},
		{"flexible whitespace", "v143, Version = 14.40", "14.40", true},
		{"uppercase", "VERSION=14.2", "14.2", true},
		{"bare version", "14.40", "14.40", true},
		{"bare dots", "14.40.33807", "14.40.33807", true},
		{"architecture only", "host=x64", "", false},
		{"plain name", "v143", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph(preset.Preset{Name: "p", Toolset: preset.ToolsetField{Value: tt.toolset}})
			v, ok := g.ResolveToolset("p")
			if ok != tt.wantOK || v != tt.want {
				t.Errorf("toolset %q resolved to %q, %v; want %q, %v", tt.toolset, v, ok, tt.want, tt.wantOK)
			}
		})
	}
}
