package convert

import (
	"os"
	"strings"
	"testing"
)

// TestRoundtripCanonical tests that canonical markdown survives load and serialize unchanged
func TestRoundtripCanonical(t *testing.T) {
	content, err := os.ReadFile("testdata/sample.md")
	if err != nil {
		t.Fatalf("Failed to read markdown fixture: %v", err)
	}

	expected := strings.TrimRight(string(content), "\n")
	actual := SerializeDocument(LoadDocument(string(content)))

	if actual != expected {
		t.Errorf("Roundtrip failed to preserve content.\n\nOriginal:\n%s\n\nAfter roundtrip:\n%s", expected, actual)
		showDiff(t, expected, actual)
	}
}

// TestNormalizeMessy tests that alternate markers and line endings are canonicalized
func TestNormalizeMessy(t *testing.T) {
	content, err := os.ReadFile("testdata/messy.md")
	if err != nil {
		t.Fatalf("Failed to read markdown fixture: %v", err)
	}

	expected := "**bold** and *it*\n- x\n  trailing"
	actual := Normalize(string(content))

	if actual != expected {
		t.Errorf("Normalize mismatch.\n\nExpected:\n%s\n\nGot:\n%s", expected, actual)
		showDiff(t, expected, actual)
	}
}

// TestIdempotence tests that normalizing twice produces the same result
func TestIdempotence(t *testing.T) {
	for _, fixture := range []string{"testdata/sample.md", "testdata/messy.md"} {
		content, err := os.ReadFile(fixture)
		if err != nil {
			t.Fatalf("Failed to read fixture %s: %v", fixture, err)
		}

		once := Normalize(string(content))
		twice := Normalize(once)

		if normalizeWhitespace(once) != normalizeWhitespace(twice) {
			t.Errorf("%s: normalization is not idempotent.\n\nFirst:\n%s\n\nSecond:\n%s", fixture, once, twice)
			showDiff(t, once, twice)
		}
	}
}

func normalizeWhitespace(s string) string {
	// Normalize line endings and trim trailing whitespace
	lines := SplitLines(s)
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func showDiff(t *testing.T, expected, actual string) {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	maxLines := len(expectedLines)
	if len(actualLines) > maxLines {
		maxLines = len(actualLines)
	}

	t.Log("\nLine-by-line diff:")
	for i := 0; i < maxLines; i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}

		if expLine != actLine {
			t.Logf("Line %d:\n  Expected: %q\n  Actual:   %q", i+1, expLine, actLine)
		}
	}
}
