package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed)
	heading = color.New(color.FgCyan, color.Bold)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHeading(w io.Writer, title string) {
	heading.Fprintln(w, title)
	faint.Fprintln(w, strings.Repeat("─", len(title)))
}

// printRow writes an aligned label/value pair
func printRow(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-18s %s\n", label, value)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func hours(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func optInt(v *int) string {
	if v == nil {
		return faint.Sprint("--")
	}
	return comma(*v)
}

func optFloat(v *float64, unit string) string {
	if v == nil {
		return faint.Sprint("--")
	}
	s := humanize.FormatFloat("#,###.#", *v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

// signed renders a delta with an explicit sign
func signed(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f", *v)
}

// scoreColor buckets a 0-100 score
func scoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return good
	case score >= 60:
		return warn
	default:
		return bad
	}
}

func severityColor(severity string) *color.Color {
	switch severity {
	case "high":
		return bad
	case "medium":
		return warn
	default:
		return faint
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case "SUCCESS":
		return good
	case "PARTIAL", "RUNNING":
		return warn
	default:
		return bad
	}
}
