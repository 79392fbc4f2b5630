package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/xdedup/internal/adapters/socket"
	"github.com/corey/xdedup/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// formatRun summarizes one run for the terminal.
//
//	⚡ clean │ 120 documents, 87 changed │ -1.2M chars (34.1%) │ 812ms
//	  out: /corpus.clean
func formatRun(run *ports.RunRecord) string {
	charsIn, bytesIn, bytesOut := 0, 0, 0
	for _, d := range run.Documents {
		charsIn += d.CharsIn
		bytesIn += d.BytesIn
		bytesOut += d.BytesOut
	}
	removed := run.RemovedChars()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %d documents, %d changed │ -%s chars (%s) │ %dms\n",
		colorBold, run.Mode, colorReset,
		len(run.Documents), run.ChangedDocuments(),
		formatCount(removed), formatPercent(removed, charsIn), run.ElapsedMs))
	if run.Batches > 1 {
		sb.WriteString(fmt.Sprintf("  %sbatches: %d%s\n", colorGray, run.Batches, colorReset))
	}
	if run.DryRun {
		sb.WriteString(fmt.Sprintf("  %sdry run: nothing written (would save %s bytes)%s\n",
			colorYellow, formatCount(bytesIn-bytesOut), colorReset))
	} else {
		sb.WriteString(fmt.Sprintf("  out: %s%s%s\n", colorCyan, run.Output, colorReset))
	}
	return sb.String()
}

// formatRunDetail lists every document of one run.
func formatRunDetail(run *ports.RunRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ run %s%s │ %s │ %s │ min-size %d\n",
		colorBold, run.ID, colorReset, run.Mode,
		time.Unix(run.StartedAt, 0).Format("2006-01-02 15:04:05"), run.MinSize))
	sb.WriteString(fmt.Sprintf("  in:  %s\n", run.Input))
	sb.WriteString(fmt.Sprintf("  out: %s\n", run.Output))
	for _, d := range run.Documents {
		removed := d.CharsIn - d.CharsOut
		color := colorGray
		if removed > 0 {
			color = colorGreen
		}
		sb.WriteString(fmt.Sprintf("  %s%s%s  %d → %d chars  %s-%s%s",
			colorCyan, d.ID, colorReset, d.CharsIn, d.CharsOut,
			color, formatPercent(removed, d.CharsIn), colorReset))
		if d.Ranges > 0 {
			sb.WriteString(fmt.Sprintf("  %s%d ranges%s", colorGray, d.Ranges, colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatHistory lists runs newest first, one line each.
func formatHistory(runs []*ports.RunRecord) string {
	if len(runs) == 0 {
		return "⚡ no runs recorded\n"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d runs%s\n", colorBold, len(runs), colorReset))
	for _, r := range runs {
		flag := ""
		if r.DryRun {
			flag = fmt.Sprintf("  %sdry-run%s", colorYellow, colorReset)
		}
		sb.WriteString(fmt.Sprintf("  %s#%s%s  %s  %-6s  %d docs  -%s chars  %dms%s\n",
			colorCyan, r.ID, colorReset,
			time.Unix(r.StartedAt, 0).Format("2006-01-02 15:04"),
			r.Mode, len(r.Documents), formatCount(r.RemovedChars()), r.ElapsedMs, flag))
	}
	return sb.String()
}

func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ xdedup server%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:    %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Requests:  %d\n", h.Requests))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	if h.CharsPerSec > 0 {
		sb.WriteString(fmt.Sprintf("  Rate:      %s chars/s\n", formatCount(int(h.CharsPerSec))))
	}
	return sb.String()
}

// formatCount renders n compactly: 999, 1.2k, 3.4M.
func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// formatPercent renders part/whole as a percentage; 0 when whole is 0.
func formatPercent(part, whole int) string {
	if whole == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(whole))
}
