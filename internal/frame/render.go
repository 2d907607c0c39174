package frame

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/olekukonko/tablewriter"
)

// Render prints df as a table. When maxRows is positive only the first
// maxRows rows are printed, followed by a count of the rest.
func Render(w io.Writer, df dataframe.DataFrame, maxRows int) error {
	if df.Err != nil {
		return df.Err
	}
	nrow, _ := df.Dims()
	shown := nrow
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}

	names := df.Names()
	cols := make([][]string, len(names))
	for j, name := range names {
		cols[j] = formatColumn(df.Col(name), shown)
	}

	table := tablewriter.NewWriter(w)
	table.Header(names)
	for i := 0; i < shown; i++ {
		row := make([]string, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render row %d: %w", i, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if shown < nrow {
		fmt.Fprintf(w, "... %d more rows (%d total)\n", nrow-shown, nrow)
	}
	return nil
}

func formatColumn(s series.Series, n int) []string {
	out := make([]string, n)
	if s.Type() == series.Float {
		vals := s.Float()
		for i := 0; i < n; i++ {
			out[i] = FormatFloat(vals[i])
		}
		return out
	}
	for i := 0; i < n; i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}

// FormatFloat prints integral values without decimals and others with at
// most four, trailing zeros trimmed. NaN prints as empty.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'f', -1, 64)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case math.Abs(v) < 1e-4:
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

// RenderKV prints a two-column key/value table with keys sorted.
func RenderKV(w io.Writer, header [2]string, kv map[string]string) error {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sortStrings(keys)

	table := tablewriter.NewWriter(w)
	table.Header(header[:])
	for _, k := range keys {
		if err := table.Append([]string{k, kv[k]}); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderRows prints string rows under header.
func RenderRows(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func sortStrings(s []string) { sort.Strings(s) }
