package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello, World!", "Hello, World!"},
		{"  padded  ", "padded"},
		{"<b>bold</b> title", "bold title"},
		{"<script>alert('xss')</script>safe", "safe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDescription_KeepsFormatting(t *testing.T) {
	input := "<p><strong>Bold</strong> plan</p>"
	got := Description(input)
	if !strings.Contains(got, "<strong>Bold</strong>") {
		t.Errorf("expected formatting preserved, got %q", got)
	}
}

func TestDescription_StripsScript(t *testing.T) {
	got := Description("<p>ok</p><script>alert('xss')</script>")
	if strings.Contains(got, "script") {
		t.Errorf("expected script removed, got %q", got)
	}
}
