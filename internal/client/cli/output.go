package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/offsync/internal/timex"
	"golang.org/x/term"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ValidFormats lists the values accepted by --format. Empty means auto.
var ValidFormats = []string{FormatTable, FormatJSON}

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// resolveFormat picks the output format for w: the requested one if set,
// otherwise table on a terminal and JSON everywhere else.
func resolveFormat(requested string, w io.Writer) (string, error) {
	switch requested {
	case FormatTable, FormatJSON:
		return requested, nil
	case "":
	default:
		return "", fmt.Errorf("invalid format %q: must be one of %v", requested, ValidFormats)
	}
	if f, ok := w.(*os.File); ok && isTerminal(int(f.Fd())) {
		return FormatTable, nil
	}
	return FormatJSON, nil
}

// printer renders command results. Table output is aligned with tabwriter.
type printer struct {
	format string
	w      io.Writer
}

// table is one tabular result: a header and its rows.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

// print writes v as indented JSON, or t as a table.
func (p *printer) print(v any, t *table) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	for _, r := range t.rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// printID reports the id of a created row.
func (p *printer) printID(id string) error {
	if p.format == FormatJSON {
		return p.print(map[string]string{"id": id}, nil)
	}
	_, err := fmt.Fprintln(p.w, id)
	return err
}

func millis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return timex.FormatMillis(ms)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// shorten keeps table cells on one line.
func shorten(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinTags(tags []string) string { return strings.Join(tags, ",") }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
