package main

import (
	"bytes"
	"strings"
	"testing"
)

// execPagestash runs a full command tree against the given data
// directory and returns the combined stdout.
func execPagestash(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--data-dir", dataDir))

	err := cmd.Execute()
	return out.String(), err
}

func TestIndexLifecycleThroughCLI(t *testing.T) {
	dataDir := t.TempDir()

	// Index a page with a visit, a bookmark, and a tag.
	out, err := execPagestash(t, dataDir, "add", "https://example.com/article",
		"--title", "Concurrency Patterns",
		"--text", "goroutines and channels compose pipelines",
		"--visit", "1700000000000",
		"--bookmark",
		"--tag", "reading")
	if err != nil {
		t.Fatalf("add failed: %v (output: %s)", err, out)
	}
	if !strings.Contains(out, "Indexed https://example.com/article") {
		t.Errorf("unexpected add output: %q", out)
	}

	t.Run("term search finds the page", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "search", "goroutines")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "1 result(s)") {
			t.Errorf("expected one result, got %q", out)
		}
		if !strings.Contains(out, "https://example.com/article") {
			t.Errorf("expected result URL in output, got %q", out)
		}
		if !strings.Contains(out, "*") {
			t.Errorf("expected bookmark marker in output, got %q", out)
		}
	})

	t.Run("blank search lists the page", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "search")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "https://example.com/article") {
			t.Errorf("expected result URL in output, got %q", out)
		}
	})

	t.Run("stopword-only query is a bad term", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "search", "the")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "No searchable terms in query.") {
			t.Errorf("expected bad-term message, got %q", out)
		}
	})

	t.Run("json report contains the url", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "search", "goroutines", "--json")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, `"url":`) || !strings.Contains(out, "example.com/article") {
			t.Errorf("expected JSON result, got %q", out)
		}
	})

	t.Run("suggest completes the domain", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "suggest", "domain", "exam")
		if err != nil {
			t.Fatalf("suggest failed: %v", err)
		}
		if !strings.Contains(out, "example.com") {
			t.Errorf("expected domain suggestion, got %q", out)
		}
	})

	t.Run("tag filter narrows and delete widens", func(t *testing.T) {
		out, err := execPagestash(t, dataDir, "search", "--tag", "reading")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "https://example.com/article") {
			t.Errorf("expected tagged result, got %q", out)
		}

		if _, err := execPagestash(t, dataDir, "tag", "--delete", "https://example.com/article", "reading"); err != nil {
			t.Fatalf("tag delete failed: %v", err)
		}

		out, err = execPagestash(t, dataDir, "search", "--tag", "reading")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "0 result(s)") {
			t.Errorf("expected no tagged results, got %q", out)
		}
	})

	t.Run("bookmark delete removes the bookmark filter match", func(t *testing.T) {
		if _, err := execPagestash(t, dataDir, "bookmark", "--delete", "https://example.com/article"); err != nil {
			t.Fatalf("bookmark delete failed: %v", err)
		}

		out, err := execPagestash(t, dataDir, "search", "--bookmarks")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "0 result(s)") {
			t.Errorf("expected no bookmarked results, got %q", out)
		}
	})

	t.Run("del by domain empties the index", func(t *testing.T) {
		if _, err := execPagestash(t, dataDir, "del", "--domain", "example.com"); err != nil {
			t.Fatalf("del failed: %v", err)
		}

		out, err := execPagestash(t, dataDir, "search", "goroutines")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(out, "0 result(s)") {
			t.Errorf("expected empty index, got %q", out)
		}
	})
}

func TestMigrationThroughCLI(t *testing.T) {
	dataDir := t.TempDir()

	for _, url := range []string{
		"https://alpha.test/one",
		"https://beta.test/two",
	} {
		if out, err := execPagestash(t, dataDir, "add", url,
			"--text", "payload for "+url, "--visit", "1700000000000"); err != nil {
			t.Fatalf("add %s failed: %v (output: %s)", url, err, out)
		}
	}

	out, err := execPagestash(t, dataDir, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Active backend:  legacy") {
		t.Errorf("expected legacy backend before migration, got %q", out)
	}

	out, err = execPagestash(t, dataDir, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "Migration finished") {
		t.Errorf("expected finished migration, got %q", out)
	}

	// Backend flips on the next startup; the migrate run itself stays
	// on the backend it opened with.
	out, err = execPagestash(t, dataDir, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Active backend:  structured") {
		t.Errorf("expected structured backend after migration, got %q", out)
	}
	if !strings.Contains(out, "Migration state: finished") {
		t.Errorf("expected finished state, got %q", out)
	}

	out, err = execPagestash(t, dataDir, "search", "payload")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "2 result(s)") {
		t.Errorf("expected both pages after migration, got %q", out)
	}
}
