package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func findBinding(bindings []Binding, trigger string) (Binding, int) {
	for i, b := range bindings {
		if b.Trigger == trigger {
			return b, i
		}
	}
	return Binding{}, -1
}

func TestDefaults(t *testing.T) {
	d, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}

	if v, ok := d.Option("font_size"); !ok || Normalize(v) != "11" {
		t.Errorf("font_size = %v, %v; want 11", v, ok)
	}
	if v, ok := d.Option("kitty_mod"); !ok || Normalize(v) != "ctrl+shift" {
		t.Errorf("kitty_mod = %v, %v", v, ok)
	}
	if b, i := findBinding(d.Keys, "ctrl+shift+t"); i < 0 || b.Action != "new_tab" {
		t.Errorf("ctrl+shift+t binding = %+v (index %d), want new_tab", b, i)
	}
	if _, i := findBinding(d.Mouse, "left click ungrabbed"); i < 0 {
		t.Error("default mouse map should bind left click")
	}
	if len(d.Actions) == 0 || d.Actions[0].Group != "win" {
		t.Errorf("actions should start with the win group, got %d actions", len(d.Actions))
	}
	if d.Info.Version == "" {
		t.Error("defaults should carry a version")
	}
}

func TestDefaultsReturnsCopies(t *testing.T) {
	a, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	a.Keys = nil
	a.Options[0].Value = "changed"

	b, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Keys) == 0 {
		t.Error("mutating one Defaults() result affected another")
	}
	if Normalize(b.Options[0].Value) == "changed" {
		t.Error("option values leaked between Defaults() results")
	}
}

func TestBindingKey(t *testing.T) {
	normal := Binding{Trigger: "ctrl+a", Action: "new_tab"}
	moded := Binding{Trigger: "ctrl+a", Mode: "mw", Action: "new_tab"}
	if normal.Key() == moded.Key() {
		t.Error("bindings in different modes should have different keys")
	}
	if got := (Binding{Action: "change_font_size all +2.0"}).ActionName(); got != "change_font_size" {
		t.Errorf("ActionName() = %q", got)
	}
}

func TestSplitInvocation(t *testing.T) {
	name, args := SplitInvocation("kitten hints --type path")
	if name != "kitten" || args != " hints --type path" {
		t.Errorf("SplitInvocation() = (%q, %q)", name, args)
	}
	name, args = SplitInvocation("new_tab")
	if name != "new_tab" || args != "" {
		t.Errorf("SplitInvocation(new_tab) = (%q, %q)", name, args)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()

	tomlPath := writeFile(t, dir, "live.toml", `
options = [
  { name = "font_size", value = 12.0 },
  { name = "kitty_mod", value = "ctrl+alt" },
]
colors = [{ name = "foreground", value = "#EEE" }]
keys = [{ trigger = "kitty_mod+t", action = "new_tab" }]
env = [{ name = "EDITOR", value = "vim" }]
`)
	yamlPath := writeFile(t, dir, "live.yaml", `
options:
  - name: font_size
    value: 12
keys:
  - trigger: ctrl+shift+t
    action: new_tab
`)
	jsonPath := writeFile(t, dir, "live.json", `{
  "options": [{"name": "font_size", "value": 12}],
  "keys": [{"trigger": "Shift+Ctrl+T", "action": "new_tab"}]
}`)

	tests := []struct {
		path    string
		trigger string
	}{
		{tomlPath, "ctrl+alt+t"},
		{yamlPath, "ctrl+shift+t"},
		{jsonPath, "ctrl+shift+t"},
	}

	for _, tt := range tests {
		t.Run(filepath.Ext(tt.path), func(t *testing.T) {
			s, err := LoadFile(tt.path)
			if err != nil {
				t.Fatalf("LoadFile(%s) error: %v", tt.path, err)
			}
			if v, _ := s.Option("font_size"); Normalize(v) != "12" {
				t.Errorf("font_size = %v, want 12", v)
			}
			if _, i := findBinding(s.Keys, tt.trigger); i < 0 {
				t.Errorf("expected binding %q, got %+v", tt.trigger, s.Keys)
			}
			if len(s.Info.ConfigPaths) != 1 || s.Info.ConfigPaths[0] != tt.path {
				t.Errorf("ConfigPaths = %v", s.Info.ConfigPaths)
			}
		})
	}
}

func TestLoadFileUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "live.ini", "font_size=12")
	_, err := LoadFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFile(.ini) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "options = [")
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestApplyOverrides(t *testing.T) {
	d, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}

	s, err := ApplyOverrides(d, []string{"font_size=14", "map=ctrl+alt+n new_os_window", "background=#123456"})
	if err != nil {
		t.Fatalf("ApplyOverrides() error: %v", err)
	}
	if v, _ := s.Option("font_size"); Normalize(v) != "14" {
		t.Errorf("font_size = %v, want 14", v)
	}
	if v, _ := s.Color("background"); NormalizeColor(v) != "#123456" {
		t.Errorf("background = %v", v)
	}
	if b, i := findBinding(s.Keys, "ctrl+alt+n"); i < 0 || b.Action != "new_os_window" {
		t.Errorf("override map missing: %+v", b)
	}
	if len(s.Info.ConfigOverrides) != 3 || s.Info.ConfigOverrides[0] != "font_size 14" {
		t.Errorf("ConfigOverrides = %v", s.Info.ConfigOverrides)
	}
	if v, _ := d.Option("font_size"); Normalize(v) != "11" {
		t.Error("ApplyOverrides mutated its input")
	}
}

func TestApplyOverridesInvalid(t *testing.T) {
	d, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyOverrides(d, []string{"font_size"}); err == nil {
		t.Error("expected error for override without '='")
	}
}
