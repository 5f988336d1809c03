// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/doc-podcast/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// clip shortens s to n runes, ending in "..." when cut
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs the extracted sections with their key point counts.
func (p *Printer) PrintDocument(doc *types.ExtractedDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:      %s\n", doc.Title))
	sb.WriteString(fmt.Sprintf("Sections:   %d\n", len(doc.Sections)))
	sb.WriteString(fmt.Sprintf("Key points: %d\n\n", doc.TotalKeyPoints()))

	for _, section := range doc.Sections {
		sb.WriteString(fmt.Sprintf("• %s (pages %s): %d\n", section.Name, section.PagesString(), len(section.KeyPoints)))
		count := min(len(section.KeyPoints), 2)
		for i := 0; i < count; i++ {
			kp := section.KeyPoints[i]
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", kp.Category, clip(kp.Point, 40)))
		}
		if len(section.KeyPoints) > count {
			sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(section.KeyPoints)-count))
		}
	}

	p.printBox("EXTRACTED DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEpisodePlan outputs the plan's segments and the points each one covers.
func (p *Printer) PrintEpisodePlan(plan *types.EpisodePlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", plan.Title))
	if plan.OpeningHook != "" {
		sb.WriteString(fmt.Sprintf("Hook:  %s\n", plan.OpeningHook))
	}
	sb.WriteString("\n")

	for i, segment := range plan.Segments {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, segment.Title))
		if len(segment.KeyPointsToCover) > 0 {
			sb.WriteString(fmt.Sprintf("   [%s]\n", strings.Join(segment.KeyPointsToCover, ", ")))
		}
	}

	if plan.FrictionMoment != "" {
		sb.WriteString(fmt.Sprintf("\nFriction: %s\n", plan.FrictionMoment))
	}

	p.printBox("EPISODE PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScript outputs the opening lines of the script and its length.
func (p *Printer) PrintScript(script *types.PodcastScript) {
	if script == nil || len(script.Dialogue) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", script.Title))
	sb.WriteString(fmt.Sprintf("%d lines, ~%d words\n\n", len(script.Dialogue), types.CountWords(script.Dialogue)))

	count := min(len(script.Dialogue), maxItemsToShow)
	for i := 0; i < count; i++ {
		line := script.Dialogue[i]
		sb.WriteString(fmt.Sprintf("%s: %s\n", line.Speaker, line.Text))
	}
	if len(script.Dialogue) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more lines", len(script.Dialogue)-maxItemsToShow))
	}

	p.printBox("PODCAST SCRIPT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the verification summary, per-section coverage and any
// unsupported claims.
func (p *Printer) PrintReport(report *types.VerificationReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Claims:         %d\n", report.TotalClaims))
	sb.WriteString(fmt.Sprintf("Supported:      %d\n", report.Supported))
	sb.WriteString(fmt.Sprintf("Partial:        %d\n", report.PartiallySupported))
	sb.WriteString(fmt.Sprintf("Hallucinations: %d\n", report.Hallucinations))
	sb.WriteString(fmt.Sprintf("Support rate:   %.2f%%\n", report.SupportRate))
	sb.WriteString(fmt.Sprintf("Coverage:       %.2f%%\n", report.CoveragePercentage))
	if report.Degraded {
		sb.WriteString(fmt.Sprintf("⚠ degraded: %d batch(es) not fully reconciled\n", len(report.DegradedBatches)))
	}

	if len(report.Coverage) > 0 {
		sb.WriteString("\n")
		for _, item := range report.Coverage {
			total := len(item.Covered) + len(item.Omitted)
			sb.WriteString(fmt.Sprintf("• %-8s %s (%d/%d)\n", item.Status, item.Section, len(item.Covered), total))
		}
	}

	p.printBox("VERIFICATION REPORT", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintHallucinations(report.HallucinationFlags())
}

// PrintHallucinations outputs the claims the source does not support.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHallucinations(flags []types.ClaimVerification) {
	if len(flags) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO HALLUCINATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d unsupported claims:\n\n", len(flags)))

	for i, c := range flags {
		sb.WriteString(fmt.Sprintf("⚠ #%d %s\n", c.Index, clip(c.Claim.Claim, 45)))
		if c.Unresolved {
			sb.WriteString("  (unresolved verifier response)\n")
		}
		if i < len(flags)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("HALLUCINATION FLAGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarnings outputs data quality warnings collected during the run.
func (p *Printer) PrintWarnings(warnings []types.DataQualityWarning) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(warnings), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		w := warnings[i]
		subject := w.Stage
		if w.Subject != "" {
			subject += "/" + w.Subject
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n  %s\n", subject, w.Message))
	}
	if len(warnings) > count {
		sb.WriteString(fmt.Sprintf("... and %d more", len(warnings)-count))
	}

	p.printBox(fmt.Sprintf("DATA QUALITY (%d)", len(warnings)), strings.TrimSuffix(sb.String(), "\n"))
}
