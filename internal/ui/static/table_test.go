package static

import (
	"strings"
	"testing"

	"github.com/raphi011/benchsrc/internal/override"
	"github.com/raphi011/benchsrc/internal/worktree"
)

func TestRenderTable_Empty(t *testing.T) {
	t.Parallel()

	if got := RenderTable(OverrideHeaders, nil); got != "" {
		t.Errorf("RenderTable(no rows) = %q, want empty", got)
	}
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	out := RenderTable([]string{"A", "B"}, [][]string{
		{"short", "x"},
		{"a-much-longer-cell", "y"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), out)
	}
	// Columns are aligned: the second column starts at the same offset.
	if strings.Index(lines[1], "x") != strings.Index(lines[2], "y") {
		t.Errorf("columns not aligned:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("table should end with a newline")
	}
}

func TestOverrideTableRow(t *testing.T) {
	t.Parallel()

	row := OverrideTableRow(override.Entry{
		Repo:   "acme",
		Commit: "deadbeefcafe0000000000000000000000000000",
		Path:   "/src/acme",
	})
	if len(row) != len(OverrideHeaders) {
		t.Fatalf("expected %d columns, got %d", len(OverrideHeaders), len(row))
	}
	if row[0] != "acme" || row[1] != "deadbee" || row[2] != "/src/acme" {
		t.Errorf("row = %v", row)
	}

	def := OverrideTableRow(override.Entry{Repo: "acme", Commit: override.DefaultKey, Path: "/src"})
	if def[1] != "(default)" {
		t.Errorf("default entry commit column = %q, want (default)", def[1])
	}
}

func TestWorktreeTableRow(t *testing.T) {
	t.Parallel()

	e := worktree.Entry{
		Kind:   worktree.KindRemote,
		Key:    "github.com/owner_repo",
		Commit: "deadbeefcafe0000000000000000000000000000",
		Path:   "/cache/worktrees/remote/github.com/owner_repo/deadbeefcafe0000000000000000000000000000",
		Valid:  true,
	}

	row := WorktreeTableRow(e)
	if len(row) != len(WorktreeHeaders) {
		t.Fatalf("expected %d columns, got %d", len(WorktreeHeaders), len(row))
	}
	if row[0] != "remote" || row[1] != "github.com/owner_repo" || row[2] != "deadbee" || row[3] != "ok" {
		t.Errorf("row = %v", row)
	}

	e.Valid = false
	row = WorktreeTableRow(e)
	if !strings.Contains(row[3], "corrupt") {
		t.Errorf("invalid entry status = %q, want corrupt", row[3])
	}
}
