// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as tables.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/override"
	"github.com/raphi011/benchsrc/internal/worktree"
)

// OverrideHeaders are the column headers for OverrideTableRow.
var OverrideHeaders = []string{"REPO", "COMMIT", "PATH"}

// WorktreeHeaders are the column headers for WorktreeTableRow.
var WorktreeHeaders = []string{"KIND", "REPO", "COMMIT", "STATUS", "PATH"}

var corruptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// OverrideTableRow formats an override entry. Default entries show
// "(default)" instead of a commit.
func OverrideTableRow(e override.Entry) []string {
	commit := cachekey.Short(e.Commit)
	if e.Commit == override.DefaultKey {
		commit = "(default)"
	}
	return []string{e.Repo, commit, e.Path}
}

// WorktreeTableRow formats a persistent worktree entry. Entries that are not
// valid worktrees are highlighted.
func WorktreeTableRow(e worktree.Entry) []string {
	status := "ok"
	if !e.Valid {
		status = corruptStyle.Render("corrupt")
	}
	return []string{e.Kind, e.Key, cachekey.Short(e.Commit), status, e.Path}
}
