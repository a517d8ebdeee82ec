package styles

import (
	"testing"

	"github.com/tonhe/mikrochart/internal/history"
)

func TestGetThemeByName(t *testing.T) {
	theme := GetThemeByName("solarized-dark")
	if theme == nil {
		t.Fatal("GetThemeByName('solarized-dark') returned nil")
	}
	if theme.Name != "Solarized Dark" {
		t.Errorf("expected name 'Solarized Dark', got %q", theme.Name)
	}
}

func TestGetThemeByNameMissing(t *testing.T) {
	theme := GetThemeByName("nonexistent")
	if theme != nil {
		t.Error("expected nil for nonexistent theme")
	}
}

func TestListThemes(t *testing.T) {
	themes := ListThemes()
	if len(themes) < 20 {
		t.Errorf("expected at least 20 themes, got %d", len(themes))
	}
}

func TestDefaultThemeIsMikroTik(t *testing.T) {
	if DefaultTheme.Name != "MikroTik" {
		t.Errorf("expected default theme MikroTik, got %q", DefaultTheme.Name)
	}
}

func TestNextThemeCycles(t *testing.T) {
	slugs := ListThemes()
	seen := map[string]bool{}
	slug := slugs[0]
	for range slugs {
		if seen[slug] {
			t.Fatalf("theme %q visited twice before the cycle closed", slug)
		}
		seen[slug] = true
		slug = NextTheme(slug)
	}
	if slug != slugs[0] {
		t.Errorf("expected cycle to wrap to %q, got %q", slugs[0], slug)
	}
	if got := NextTheme("nonexistent"); GetThemeByName(got) == nil {
		t.Errorf("expected a valid theme for an unknown slug, got %q", got)
	}
}

func TestFieldColorsAreDistinct(t *testing.T) {
	th := DefaultTheme
	seen := map[string]history.Field{}
	for _, f := range history.Fields {
		c := string(th.FieldColor(f))
		if other, ok := seen[c]; ok {
			t.Errorf("%s and %s share color %s", f, other, c)
		}
		seen[c] = f
	}
}

func TestThemesHaveFullPalette(t *testing.T) {
	for slug, th := range Themes {
		for i, c := range []string{
			string(th.Base00), string(th.Base05), string(th.Base08), string(th.Base0B), string(th.Base0D),
		} {
			if len(c) != 7 || c[0] != '#' {
				t.Errorf("%s: color %d is %q, want #rrggbb", slug, i, c)
			}
		}
	}
}
