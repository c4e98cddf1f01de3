package textproc

import (
	"encoding/json"
	"reflect"
	"testing"
)

// TestExtractTerms tests term splitting, filtering, and set semantics.
func TestExtractTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on whitespace",
			text: "Quick Brown FOX",
			want: []string{"brown", "fox", "quick"},
		},
		{
			name: "deduplicates via set semantics",
			text: "fox fox Fox FOX",
			want: []string{"fox"},
		},
		{
			name: "strips diacritics",
			text: "café naïve",
			want: []string{"cafe", "naive"},
		},
		{
			name: "preserves internal hyphens",
			text: "state-of-the-art e-mail",
			want: []string{"e-mail", "state-of-the-art"},
		},
		{
			name: "preserves email-like tokens",
			text: "contact user@example.com today",
			want: []string{"contact", "today", "user@example.com"},
		},
		{
			name: "splits plain dotted tokens",
			text: "pkg.module.Thing",
			want: []string{"module", "pkg", "thing"},
		},
		{
			name: "drops single characters",
			text: "a b c go",
			want: []string{"go"},
		},
		{
			name: "drops short numbers keeps long ones",
			text: "room 5 code 5555",
			want: []string{"5555", "code", "room"},
		},
		{
			name: "drops stopwords",
			text: "the quick and the dead",
			want: []string{"dead", "quick"},
		},
		{
			name: "trims boundary punctuation",
			text: "-fox- .dog. (cat)",
			want: []string{"cat", "dog", "fox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractTerms(tt.text).Slice()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTerms(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestExtractTermsDeterminism tests that repeated extraction is stable.
func TestExtractTermsDeterminism(t *testing.T) {
	t.Parallel()

	const text = "The quick brown fox jumps over the lazy dog at user@example.com"
	first := ExtractTerms(text)
	for i := 0; i < 10; i++ {
		if got := ExtractTerms(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction %d differs: %v vs %v", i, got.Slice(), first.Slice())
		}
	}
}

// TestExtractURLTerms tests path-derived terms.
func TestExtractURLTerms(t *testing.T) {
	t.Parallel()

	got := ExtractURLTerms("/blog/go-generics/2023").Slice()
	want := []string{"2023", "blog", "go-generics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractURLTerms = %v, want %v", got, want)
	}
}

// TestTermSetJSON tests the stable sorted-array encoding.
func TestTermSetJSON(t *testing.T) {
	t.Parallel()

	ts := NewTermSet("zebra", "apple", "mango")

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `["apple","mango","zebra"]` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back TermSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(back, ts) {
		t.Errorf("round trip mismatch: %v vs %v", back, ts)
	}
}
