package grid

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestPadKeepsDisplayWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
	}{
		{"short ascii", "Widget", 10},
		{"exact fit", "Widget", 6},
		{"truncated ascii", "a long item name", 8},
		{"multibyte", "Qualitätsprüfung", 10},
		{"wide runes", "標準単価テスト", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pad(tt.in, tt.width)
			if w := runewidth.StringWidth(got); w != tt.width {
				t.Errorf("pad(%q, %d) has display width %d", tt.in, tt.width, w)
			}
			if !utf8.ValidString(got) {
				t.Errorf("pad(%q, %d) cut a rune in half: %q", tt.in, tt.width, got)
			}
		})
	}
}
