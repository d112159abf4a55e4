// SPDX-License-Identifier: MIT

// Package report renders recognition results and history for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"earshot/internal/recognition"
	"earshot/internal/store"

	"github.com/charmbracelet/lipgloss"
)

const degradedPrefix = "Degraded: "

// Result renders res as a bordered summary followed by its detected content.
func Result(res *recognition.Result) string {
	if res == nil {
		return ""
	}

	rows := []string{
		row("Recognition", valueStyle.Render(res.PrimaryRecognition)),
		row("Confidence", confidence(res.Confidence)),
		row("Source", valueStyle.Render(string(res.Source))),
		row("Audio type", valueStyle.Render(string(res.AudioType))),
	}
	if res.Transcription != "" {
		rows = append(rows, row("Transcript", valueStyle.Render(fmt.Sprintf("%q", res.Transcription))))
	}
	if res.Sentiment != nil {
		rows = append(rows, row("Sentiment", valueStyle.Render(fmt.Sprintf("%s (%+.2f)", res.Sentiment.Label, res.Sentiment.Score))))
	}
	if res.Language != "" {
		rows = append(rows, row("Language", valueStyle.Render(res.Language)))
	}
	rows = append(rows, row("Analysis", dimStyle.Render(fmt.Sprintf("%d ms", res.AnalysisTime))))

	var b strings.Builder
	b.WriteString(titleStyle.Render("earshot"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	b.WriteString("\n")

	for _, fact := range res.DetectedContent {
		if strings.HasPrefix(fact, degradedPrefix) {
			b.WriteString(degradedStyle.Render("  ! " + strings.TrimPrefix(fact, degradedPrefix)))
		} else {
			b.WriteString("  • " + fact)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// History renders stored records one per line, in the order given.
func History(records []store.Record) string {
	if len(records) == 0 {
		return dimStyle.Render("no recognitions stored") + "\n"
	}
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
			dimStyle.Render(r.CreatedAt.Local().Format(time.DateTime)),
			confidence(r.Confidence),
			valueStyle.Render(r.PrimaryRecognition),
			dimStyle.Render("["+r.AudioType+"]"),
			dimStyle.Render(r.Source),
		)
	}
	return b.String()
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func confidence(c float64) string {
	s := fmt.Sprintf("%3.0f%%", c*100)
	switch {
	case c >= 0.7:
		return highStyle.Render(s)
	case c >= 0.5:
		return mediumStyle.Render(s)
	default:
		return lowStyle.Render(s)
	}
}
