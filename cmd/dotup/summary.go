package main

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotup/pkg/bootstrap"
	"github.com/arthur-debert/dotup/pkg/pkgmgr"
	"github.com/arthur-debert/dotup/pkg/provision"
	"github.com/arthur-debert/dotup/pkg/style"
	"github.com/arthur-debert/dotup/pkg/symlink"
)

// renderSummary writes the human-facing account of a full bootstrap run.
func renderSummary(w io.Writer, summary *bootstrap.Summary, dryRun bool) {
	renderTools(w, summary.Strategy, summary.Tools)
	renderLinks(w, summary.Links, summary.BackupDir, dryRun)

	if dryRun {
		fmt.Fprintln(w, style.WarningStyle.Render(MsgDryRunNotice))
	}
}

func renderTools(w io.Writer, strategy pkgmgr.Strategy, tools []bootstrap.ToolReport) {
	if strategy.DisplayName != "" {
		fmt.Fprintf(w, MsgManagerFormat, strategy.DisplayName)
	}

	fmt.Fprintln(w, style.TitleStyle.Render(MsgToolsHeading))
	if len(tools) == 0 {
		fmt.Fprintln(w, style.MutedStyle.Render(MsgNoToolsDeclared))
		return
	}

	for _, tool := range tools {
		fmt.Fprintln(w, style.ListItemStyle.Render(toolLine(tool)))
	}
}

func toolLine(tool bootstrap.ToolReport) string {
	if tool.WouldProvision {
		return fmt.Sprintf("%s %s (would provision)",
			style.WarningStyle.Render("~"), tool.Command)
	}

	mark := style.SuccessStyle.Render("✓")
	switch tool.Outcome.Kind {
	case provision.Satisfied:
		return fmt.Sprintf("%s %s %s (already present)", mark, tool.Command, tool.Outcome.Version)
	case provision.Installed:
		return fmt.Sprintf("%s %s %s (installed)", mark, tool.Command, tool.Outcome.Version)
	case provision.FallbackUsed:
		return fmt.Sprintf("%s %s %s (fallback installer)", mark, tool.Command, tool.Outcome.Version)
	default:
		return fmt.Sprintf("%s %s", mark, tool.Command)
	}
}

func renderLinks(w io.Writer, links []symlink.LinkResult, backupDir string, dryRun bool) {
	fmt.Fprintln(w, style.TitleStyle.Render(MsgLinksHeading))
	if len(links) == 0 {
		fmt.Fprintln(w, style.MutedStyle.Render(MsgNoLinksDeclared))
		return
	}

	backupUsed := false
	for _, link := range links {
		fmt.Fprintln(w, style.ListItemStyle.Render(linkLine(link)))
		if link.Action == symlink.ActionBackedUp {
			backupUsed = true
		}
	}

	if backupUsed && !dryRun {
		fmt.Fprintf(w, MsgBackupFormat, style.PathStyle.Render(backupDir))
	}
}

func linkLine(link symlink.LinkResult) string {
	target := link.Spec.Target
	switch link.Action {
	case symlink.ActionUnchanged:
		return fmt.Sprintf("%s %s (unchanged)", style.MutedStyle.Render("="), target)
	case symlink.ActionLinked:
		return fmt.Sprintf("%s %s", style.SuccessStyle.Render("+"), target)
	case symlink.ActionRelinked:
		return fmt.Sprintf("%s %s (relinked)", style.SuccessStyle.Render("+"), target)
	case symlink.ActionBackedUp:
		return fmt.Sprintf("%s %s (previous content backed up)", style.SuccessStyle.Render("+"), target)
	default:
		return fmt.Sprintf("%s %s: %v", style.ErrorStyle.Render("!"), target, link.Err)
	}
}
