package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInlineQueriesCarryMarkers(t *testing.T) {
	l := newLinter()
	if err := l.lintPath(filepath.Join("..", "..", "sqlinline")); err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, v := range l.violations {
		t.Errorf("%s", v)
	}
	if len(l.seen) < 3 {
		t.Fatalf("expected the credential queries to be checked, saw %d", len(l.seen))
	}
}

func TestLintReportsViolations(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QMissing = `select 1`\n\n" +
		"const QFirst = `--sql 11111111-2222-3333-4444-555555555555\nselect 2`\n\n" +
		"const QDuplicate = `--sql 11111111-2222-3333-4444-555555555555\nselect 3`\n\n" +
		"const NotSQL = `hello`\n"
	if err := os.WriteFile(filepath.Join(dir, "q.go"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	l := newLinter()
	if err := l.lintPath(dir); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(l.violations) != 2 {
		t.Fatalf("violations = %v, want 2", l.violations)
	}
	if l.violations[0].name != "QMissing" || !strings.Contains(l.violations[0].message, "missing") {
		t.Fatalf("first violation = %v", l.violations[0])
	}
	if l.violations[1].name != "QDuplicate" || !strings.Contains(l.violations[1].message, "QFirst") {
		t.Fatalf("second violation = %v", l.violations[1])
	}
}
