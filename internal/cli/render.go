package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/filter"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	levelFormats = map[domain.LevelStyle]func(a ...any) string{
		domain.StyleDebug:    color.New(color.FgHiBlack).SprintFunc(),
		domain.StyleInfo:     color.New(color.FgCyan).SprintFunc(),
		domain.StyleWarn:     color.New(color.FgHiYellow).SprintFunc(),
		domain.StyleError:    color.New(color.FgHiRed).SprintFunc(),
		domain.StyleFatal:    color.New(color.FgWhite, color.BgRed).SprintFunc(),
		domain.StyleFallback: color.New(color.FgWhite).SprintFunc(),
	}
	matchFormat = color.New(color.FgBlack, color.BgHiYellow).SprintFunc()
	mutedFormat = color.New(color.FgHiBlack).SprintFunc()
	boldFormat  = color.New(color.Bold).SprintFunc()
)

func levelBadge(level string) string {
	return levelFormats[domain.StyleForLevel(level)](fmt.Sprintf("%-5s", level))
}

func highlight(text, term string) string {
	var b strings.Builder
	for _, seg := range filter.Highlight(text, term) {
		if seg.Match {
			b.WriteString(matchFormat(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func printRecords(w io.Writer, v filter.View, search string) {
	for _, r := range v.Records {
		fmt.Fprintf(w, "%6d  %s  %s  %s  %s\n",
			r.ID,
			mutedFormat(r.TimestampDisplay),
			levelBadge(r.Level),
			highlight(filter.SplitClassName(r.ClassName).Name, search),
			highlight(firstLine(r.Message), search),
		)
	}

	switch {
	case v.NoMatches():
		fmt.Fprintln(w, "No matching records")
	default:
		fmt.Fprintf(w, "\nShowing %s of %s records\n", humanize.Comma(int64(len(v.Records))), humanize.Comma(int64(v.Total)))
	}
}

func printDetails(w io.Writer, source string, d domain.SystemDetails) {
	fmt.Fprintf(w, "%s\n", boldFormat(source))
	rows := []struct{ name, value string }{
		{"Machine", d.MachineName},
		{"Version", d.Version},
		{"Architecture", d.Architecture},
		{"OS name", d.OSName},
		{"OS version", d.OSVersion},
		{"OS type", d.OSType},
	}
	for _, row := range rows {
		value := row.value
		if value == "" {
			value = mutedFormat("-")
		}
		fmt.Fprintf(w, "  %-13s %s\n", row.name+":", value)
	}
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
