package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/kharidiron/pwstore/internal/models"
)

// Column widths: context, username, password, note.
var colWidths = [4]int{14, 14, 14, 20}

// renderTable prints entries as a fixed-width table, passwords in
// cleartext.
func renderTable(w io.Writer, entries []*models.Entry) {
	sep(w)
	fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
		center("context", colWidths[0]),
		center("username", colWidths[1]),
		center("password", colWidths[2]),
		center("notes", colWidths[3]))
	sep(w)
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			cell(e.Context, colWidths[0]),
			cell(e.Username, colWidths[1]),
			cell(e.Password, colWidths[2]),
			cell(e.Note, colWidths[3]))
	}
	sep(w)
}

func sep(w io.Writer) {
	fmt.Fprintf(w, "|-%s-|-%s-|-%s-|-%s-|\n",
		strings.Repeat("-", colWidths[0]),
		strings.Repeat("-", colWidths[1]),
		strings.Repeat("-", colWidths[2]),
		strings.Repeat("-", colWidths[3]))
}

// cell left-justifies s in a field of w runes, truncating when too long.
func cell(s string, w int) string {
	runes := []rune(s)
	if len(runes) > w {
		return string(runes[:w])
	}
	return s + strings.Repeat(" ", w-len(runes))
}

// center centers s in a field of w runes.
func center(s string, w int) string {
	runes := []rune(s)
	if len(runes) >= w {
		return string(runes[:w])
	}
	left := (w - len(runes)) / 2
	right := w - len(runes) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
