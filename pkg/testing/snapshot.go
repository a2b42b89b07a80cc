package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is the rendered markup of a tree, one node per line.
type Snapshot struct {
	Markup string
}

// CaptureSnapshot captures the current markup.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	return &Snapshot{Markup: FormatMarkup(t.Markup())}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// PAGELAYOUT_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("PAGELAYOUT_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: PAGELAYOUT_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(&Snapshot{Markup: string(expected)}); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: PAGELAYOUT_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s.Markup), 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	if s.Markup == other.Markup {
		return ""
	}
	return unifiedDiff(other.Markup, s.Markup)
}

// FormatMarkup renders n with one element or text node per line, indented
// by depth. Whitespace-only text is dropped.
func FormatMarkup(n *html.Node) string {
	var buf strings.Builder
	var walk func(node *html.Node, depth int)
	walk = func(node *html.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		switch node.Type {
		case html.DocumentNode:
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				walk(child, depth)
			}
			return
		case html.TextNode:
			if text := strings.TrimSpace(node.Data); text != "" {
				fmt.Fprintf(&buf, "%s%q\n", indent, text)
			}
			return
		case html.ElementNode:
			buf.WriteString(indent + "<" + node.Data)
			for _, attr := range node.Attr {
				fmt.Fprintf(&buf, " %s=%q", attr.Key, attr.Val)
			}
			buf.WriteString(">\n")
			for child := node.FirstChild; child != nil; child = child.NextSibling {
				walk(child, depth+1)
			}
		}
	}
	if n != nil {
		walk(n, 0)
	}
	return buf.String()
}

// unifiedDiff produces a simple line-by-line diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	maxLen := max(len(expectedLines), len(actualLines))
	for i := range maxLen {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
