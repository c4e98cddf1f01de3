package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yomogi/pagestash/internal/model"
)

func testResult() *model.SearchResult {
	return &model.SearchResult{
		Docs: []model.SearchDoc{
			{
				URL:         "https://example.com/foxes",
				Title:       "Fox Facts",
				HasBookmark: true,
				DisplayTime: 1700000000000,
				Tags:        []string{"nature"},
			},
			{
				URL:         "https://example.org/dogs",
				Title:       "Dog Days",
				DisplayTime: 1690000000000,
			},
		},
		TotalCount:       2,
		ResultsExhausted: true,
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))

	n, err := w.Write(testResult())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("byte count: got %d, want %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{"2 result(s)", "example.com/foxes", "Fox Facts", "nature"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimpleWriterBadTerm(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	if _, err := w.Write(&model.SearchResult{IsBadTerm: true}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No searchable terms") {
		t.Errorf("bad term output: %q", buf.String())
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())

	if _, err := w.Write(testResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded model.SearchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalCount != 2 || len(decoded.Docs) != 2 {
		t.Errorf("decoded result: %+v", decoded)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(testResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Search Results", "Fox Facts", "★"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewSimpleWriter(&b))

	if _, err := mw.Write(testResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if a.String() != b.String() || a.Len() == 0 {
		t.Error("multi writer outputs differ or are empty")
	}
}
