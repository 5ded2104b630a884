package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing", "  somchai  ", "somchai"},
		{"internal runs collapse", "somchai   jaidee", "somchai jaidee"},
		{"tabs and newlines", "somchai\t\njaidee", "somchai jaidee"},
		{"already normalized", "somchai jaidee", "somchai jaidee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	input := "  a   b \t c  "
	once := TrimAndNormalize(input)
	twice := TrimAndNormalize(once)
	if once != twice {
		t.Errorf("expected idempotence, got %q then %q", once, twice)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain digits", "0812345678", "0812345678"},
		{"dashes", "081-234-5678", "0812345678"},
		{"spaces and parens", "(081) 234 5678", "0812345678"},
		{"international", "+66812345678", "+66812345678"},
		{"plus not leading is dropped", "081+2345678", "0812345678"},
		{"letters dropped", "081abc2345678", "0812345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{
		TrimAndNormalize,
		NormalizePhone,
	}

	got := p.Apply(" 081 234 5678 ")
	if got != "0812345678" {
		t.Errorf("Pipeline.Apply = %q, want %q", got, "0812345678")
	}
}
