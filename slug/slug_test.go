package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Café Habana", "cafe-habana"},
		{"  spaces  and_underscores  ", "spaces-and-underscores"},
		{"Special!@#$Characters", "specialcharacters"},
		{"multiple---hyphens", "multiple-hyphens"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Generate(tt.input); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGenerateWithFallback(t *testing.T) {
	if got := GenerateWithFallback("", "fallback value"); got != "fallback-value" {
		t.Errorf("fallback = %q", got)
	}
	if got := GenerateWithFallback("real title", "fallback"); got != "real-title" {
		t.Errorf("got %q", got)
	}
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.yelp.com/biz/lucali-brooklyn", "yelp-com-biz-lucali-brooklyn"},
		{"http://example.com/page?utm_source=x", "example-com-page"},
		{"https://example.com/path#section", "example-com-path"},
	}
	for _, tt := range tests {
		if got := FromURL(tt.url); got != tt.want {
			t.Errorf("FromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
