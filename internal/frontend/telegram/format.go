package telegram

import (
	"fmt"
	"strings"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// orNA substitutes the placeholder for empty fields.
func orNA(s string) string {
	if s == "" {
		return search.MsgNotAvailable
	}
	return s
}

// formatResults renders items[from:] as a numbered MarkdownV2 list with a footer.
func formatResults(items []*search.Item, from, total int, more bool) string {
	var sb strings.Builder
	for _, it := range items[from:] {
		s := it.Summary()
		sb.WriteString(EscapeMdV2(fmt.Sprintf("%d. ", it.Index()+1)))
		sb.WriteString(FormatBold(s.Title))
		if s.Year != "" {
			sb.WriteString(EscapeMdV2(" (" + s.Year + ")"))
		}
		sb.WriteString("\n")
	}
	footer := fmt.Sprintf("Showing %d of %d.", len(items), total)
	if !more {
		footer += " " + search.MsgNoMore
	}
	sb.WriteString("\n")
	sb.WriteString(FormatItalic(footer))
	return sb.String()
}

// formatDetail renders an expanded movie; empty fields show as N/A.
func formatDetail(d *core.MovieDetail) string {
	var sb strings.Builder
	sb.WriteString(FormatBold(d.Title))
	sb.WriteString("\n\n")
	for _, row := range [][2]string{
		{"Year", d.Year},
		{"Genre", d.Genre},
		{"Director", d.Director},
	} {
		sb.WriteString(FormatBold(row[0] + ":"))
		sb.WriteString(" ")
		sb.WriteString(EscapeMdV2(orNA(row[1])))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(EscapeMdV2(orNA(d.Plot)))
	return sb.String()
}

// failureText renders a static failure message plus OMDb's reason for a rejected query.
func failureText(msg string, err error) string {
	if remote, ok := core.RemoteMessage(err); ok {
		return msg + "\n" + remote
	}
	return msg
}
