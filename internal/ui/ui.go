// Package ui renders the terminal output of abusectl. Colors are picked per
// writer, so output redirected to a file or buffer is plain text.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/abusectl/abusectl/internal/api"
	"github.com/abusectl/abusectl/internal/categories"
	"github.com/abusectl/abusectl/internal/metrics"
	"github.com/abusectl/abusectl/internal/report"
)

const (
	barLength     = 20
	previewLength = 39
	wrapLength    = 50
	sectionWidth  = 62
)

type styles struct {
	title   lipgloss.Style
	accent  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	border  lipgloss.Style
	box     lipgloss.Style
	summary lipgloss.Style
}

// Printer writes styled messages. Errors go to errOut, everything else to out.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
	s      styles
}

// New creates a Printer for out and errOut
func New(out, errOut io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		errOut: errOut,
		s: styles{
			title:   r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
			accent:  r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			label:   r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Width(18),
			value:   r.NewStyle().Foreground(lipgloss.Color("15")),
			dim:     r.NewStyle().Faint(true),
			success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
			failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			info:    r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
			border:  r.NewStyle().Foreground(lipgloss.Color("14")),
			box: r.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("10")).
				Padding(0, 1),
			summary: r.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("13")).
				Padding(0, 1),
		},
	}
}

// SetQuiet suppresses everything except errors and results
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

func (p *Printer) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Banner prints the application banner
func (p *Printer) Banner(version string) {
	if p.quiet {
		return
	}
	title := p.s.accent.Render("AbuseIPDB Reporter")
	sub := p.s.dim.Render("report abusive IP addresses to AbuseIPDB")
	if version != "" {
		sub += p.s.dim.Render("  v" + version)
	}
	p.println(p.s.box.BorderForeground(lipgloss.Color("14")).Render(title + "\n" + sub))
}

// Goodbye prints the exit message of the interactive menu
func (p *Printer) Goodbye() {
	if p.quiet {
		return
	}
	p.println(p.s.box.Render(p.s.title.Render("✓ Thank you for using AbuseIPDB Reporter") + "\n" +
		p.s.dim.Render("Stay safe, stay secure, stay vigilant!")))
}

// MenuItem is one numbered entry of the interactive menu
type MenuItem struct {
	Key         string
	Title       string
	Description string
}

// Menu prints the numbered main menu
func (p *Printer) Menu(items []MenuItem) {
	var b strings.Builder
	b.WriteString(p.s.title.Render("▶ MAIN MENU ◀"))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s  %s\n     %s", p.s.accent.Render("["+item.Key+"]"), p.s.value.Render(item.Title), p.s.dim.Render(item.Description))
	}
	p.println(p.s.box.BorderForeground(lipgloss.Color("14")).Render(b.String()))
}

// Section prints a section header
func (p *Printer) Section(title string) {
	if p.quiet {
		return
	}
	heading := "▶ " + title + " ◀"
	pad := (sectionWidth - lipgloss.Width(heading)) / 2
	if pad < 0 {
		pad = 0
	}
	rule := p.s.accent.Render(strings.Repeat("═", sectionWidth))
	p.println()
	p.println(rule)
	p.println(p.s.accent.Render(strings.Repeat("═", pad)) + p.s.title.Render(heading) + p.s.accent.Render(strings.Repeat("═", pad)))
	p.println(rule)
	p.println()
}

// Success prints a success line
func (p *Printer) Success(format string, a ...any) {
	if p.quiet {
		return
	}
	p.println(p.s.success.Render("✓ " + fmt.Sprintf(format, a...)))
}

// Error prints an error line to errOut, also in quiet mode
func (p *Printer) Error(format string, a ...any) {
	fmt.Fprintln(p.errOut, p.s.failure.Render("✗ "+fmt.Sprintf(format, a...)))
}

// Warning prints a warning line
func (p *Printer) Warning(format string, a ...any) {
	if p.quiet {
		return
	}
	p.println(p.s.warning.Render("⚠  " + fmt.Sprintf(format, a...)))
}

// Info prints an informational line
func (p *Printer) Info(format string, a ...any) {
	if p.quiet {
		return
	}
	p.println(p.s.info.Render("ℹ  " + fmt.Sprintf(format, a...)))
}

// Prompt returns a styled prompt for line input
func (p *Printer) Prompt(label string) string {
	return "\n" + p.s.accent.Render("→") + " " + p.s.value.Render(label) + "\n  " + p.s.title.Render("❯") + " "
}

// Categories prints the category table in two columns ordered by ID
func (p *Printer) Categories(list []categories.Category) {
	p.Section("AVAILABLE CATEGORIES")

	rows := categoryRows(list)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.s.border).
		Headers("ID", "Category", "ID", "Category").
		Rows(rows...)
	p.println(t.Render())
	p.println()
}

// categoryRows lays list out in two columns, the left one filled first
func categoryRows(list []categories.Category) [][]string {
	half := (len(list) + 1) / 2
	rows := make([][]string, 0, half)
	for i := 0; i < half; i++ {
		left := list[i]
		row := []string{strconv.Itoa(left.ID), left.Name, "", ""}
		if j := i + half; j < len(list) {
			row[2] = strconv.Itoa(list[j].ID)
			row[3] = list[j].Name
		}
		rows = append(rows, row)
	}
	return rows
}

// ConfidenceBar renders confidence as a 20 cell bar
func ConfidenceBar(confidence int) string {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	filled := confidence * barLength / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)
}

// Preview shortens s to n runes, marking the cut with "..."
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func wrap(s string, n int) []string {
	r := []rune(s)
	var lines []string
	for len(r) > n {
		lines = append(lines, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		lines = append(lines, string(r))
	}
	return lines
}

// ReportSummary prints the validated fields of a report. verbose adds the
// full comment.
func (p *Printer) ReportSummary(req report.Request, verbose bool) {
	p.Section("REPORT SUMMARY")

	ids := make([]string, 0, len(req.CategoryIDs()))
	for _, id := range req.CategoryIDs() {
		ids = append(ids, strconv.Itoa(id))
	}

	conf := req.Confidence()
	barStyle := p.s.failure
	switch {
	case conf >= 75:
		barStyle = p.s.success
	case conf >= 50:
		barStyle = p.s.warning
	}

	lines := []string{
		p.s.label.Render("IP Address:") + p.s.title.Render(req.IP()),
		p.s.label.Render("Categories:") + p.s.success.Render(strings.Join(req.CategoryNames(), ", ")),
		p.s.label.Render("Category IDs:") + p.s.info.Render(strings.Join(ids, ", ")),
		p.s.label.Render("Confidence:") + barStyle.Render(ConfidenceBar(conf)) + fmt.Sprintf(" %d%%", conf),
		p.s.label.Render("Comment:") + p.s.value.Render(Preview(req.Comment(), previewLength)),
	}
	if verbose {
		lines = append(lines, "", p.s.dim.Render("Full Comment:"))
		for _, line := range wrap(req.Comment(), wrapLength) {
			lines = append(lines, p.s.dim.Render(line))
		}
	}

	p.println(p.s.summary.Render(strings.Join(lines, "\n")))
}

// Box prints content under a title in a framed box
func (p *Printer) Box(title, content string) {
	p.println(p.s.box.Render(p.s.success.Render(title) + "\n" + p.s.value.Render(content)))
}

// Outcome prints the result of one submission
func (p *Printer) Outcome(o api.Outcome) {
	if o.Success {
		p.Success("%s", o.Message)
		if data, ok := o.Response["data"].(map[string]any); ok {
			if score, ok := data["abuseConfidenceScore"]; ok {
				p.Info("Abuse confidence score: %v", score)
			}
		}
		return
	}
	msg := o.Message
	if o.Error != "" {
		msg += ": " + o.Error
	}
	if o.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", o.StatusCode)
	}
	p.Error("%s", msg)
}

// BulkItem prints the progress line for one bulk submission
func (p *Printer) BulkItem(item report.BulkItem, total int) {
	prefix := fmt.Sprintf("[%d/%d] %s", item.Index, total, item.IP)
	if item.Outcome.Success {
		p.Success("%s: %s", prefix, item.Outcome.Message)
		return
	}
	detail := item.Outcome.Message
	if item.Outcome.Error != "" {
		detail += ": " + item.Outcome.Error
	}
	p.Error("%s: %s", prefix, detail)
}

// BulkSummary prints the final counts of a bulk run
func (p *Printer) BulkSummary(res *report.BulkResult) {
	if res.DryRun {
		p.Box("Bulk dry-run complete", fmt.Sprintf("%d of %d reports validated", res.Validated, res.Total))
		return
	}
	p.Box("Bulk submission complete", fmt.Sprintf("%d succeeded, %d failed, %d total", res.Succeeded, res.Failed, res.Total))
}

// SessionStats prints the metrics recorded during this session
func (p *Printer) SessionStats(stats *metrics.SessionStats) {
	p.Section("SESSION STATISTICS")

	lines := []string{
		p.s.label.Render("Submitted:") + strconv.FormatInt(stats.Submitted, 10),
		p.s.label.Render("Succeeded:") + p.s.success.Render(strconv.FormatInt(stats.Succeeded, 10)),
		p.s.label.Render("Failed:") + p.s.failure.Render(strconv.FormatInt(stats.Failed, 10)),
		p.s.label.Render("Dry runs:") + strconv.FormatInt(stats.DryRuns, 10),
		p.s.label.Render("Bulk batches:") + strconv.FormatInt(stats.BulkBatches, 10),
	}
	if stats.AverageLatency > 0 {
		lines = append(lines, p.s.label.Render("Avg latency:")+fmt.Sprintf("%.0f ms", stats.AverageLatency))
	}
	lines = appendCounts(lines, p, "Status codes:", stats.StatusCodes)
	lines = appendCounts(lines, p, "Transport errors:", stats.TransportErrors)
	lines = appendCounts(lines, p, "Invalid fields:", stats.ValidationFailures)

	p.println(p.s.summary.Render(strings.Join(lines, "\n")))
}

func appendCounts(lines []string, p *Printer, label string, counts map[string]int64) []string {
	if len(counts) == 0 {
		return lines
	}
	parts := make([]string, 0, len(counts))
	for _, key := range metrics.Labels(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", key, counts[key]))
	}
	return append(lines, p.s.label.Render(label)+strings.Join(parts, " "))
}
