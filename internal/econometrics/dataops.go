package econometrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Fill methods for Clean. The r/c prefix fills along rows (down each
// column) or across columns (along each row).
const (
	FillZeroRows  = "rfill"
	FillZeroCols  = "cfill"
	FillBackRows  = "rbfill"
	FillBackCols  = "cbfill"
	FillFwdRows   = "rffill"
	FillFwdCols   = "cffill"
	DropNARows    = "rdrop"
	DropNAColumns = "cdrop"
)

// Clean fills and/or drops missing values. Fills touch numeric columns
// only; limit caps consecutive fills (0 means no cap).
func (s *Store) Clean(alias, fill, drop string, limit int) error {
	return s.update(alias, func(d *dataset) error {
		df := d.df
		if fill != "" {
			var err error
			if df, err = fillNA(df, fill, limit); err != nil {
				return err
			}
		}
		switch drop {
		case "":
		case DropNARows:
			df = dropNARows(df)
		case DropNAColumns:
			df = dropNAColumns(df, d.index)
		default:
			return fmt.Errorf("drop %q: %w", drop, ErrUnsupported)
		}
		if df.Err != nil {
			return df.Err
		}
		d.df = df
		return nil
	})
}

func numericColumns(df dataframe.DataFrame) []string {
	var out []string
	for i, t := range df.Types() {
		if t == series.Float || t == series.Int {
			out = append(out, df.Names()[i])
		}
	}
	return out
}

func fillNA(df dataframe.DataFrame, method string, limit int) (dataframe.DataFrame, error) {
	names := numericColumns(df)
	cols := make([][]float64, len(names))
	for j, n := range names {
		cols[j] = df.Col(n).Float()
	}
	nrow := df.Nrow()

	switch method {
	case FillZeroRows, FillZeroCols:
		for _, c := range cols {
			for i := range c {
				if math.IsNaN(c[i]) {
					c[i] = 0
				}
			}
		}
	case FillFwdRows, FillBackRows:
		for _, c := range cols {
			fillLine(c, method == FillBackRows, limit)
		}
	case FillFwdCols, FillBackCols:
		row := make([]float64, len(cols))
		for i := 0; i < nrow; i++ {
			for j := range cols {
				row[j] = cols[j][i]
			}
			fillLine(row, method == FillBackCols, limit)
			for j := range cols {
				cols[j][i] = row[j]
			}
		}
	default:
		return df, fmt.Errorf("fill %q: %w", method, ErrUnsupported)
	}

	for j, n := range names {
		df = df.Mutate(series.New(cols[j], series.Float, n))
	}
	return df, nil
}

// fillLine propagates the last (or, backwards, the next) valid value into
// NaN gaps, at most limit in a row when limit > 0.
func fillLine(v []float64, backward bool, limit int) {
	n := len(v)
	last, run := math.NaN(), 0
	for k := 0; k < n; k++ {
		i := k
		if backward {
			i = n - 1 - k
		}
		if !math.IsNaN(v[i]) {
			last, run = v[i], 0
			continue
		}
		if math.IsNaN(last) || (limit > 0 && run >= limit) {
			continue
		}
		v[i] = last
		run++
	}
}

func dropNARows(df dataframe.DataFrame) dataframe.DataFrame {
	keep := make([]int, 0, df.Nrow())
	cols := make([]series.Series, df.Ncol())
	for j, n := range df.Names() {
		cols[j] = df.Col(n)
	}
rows:
	for i := 0; i < df.Nrow(); i++ {
		for _, c := range cols {
			if c.Elem(i).IsNA() {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return df.Subset(keep)
}

func dropNAColumns(df dataframe.DataFrame, index []string) dataframe.DataFrame {
	protected := map[string]bool{}
	for _, c := range index {
		protected[c] = true
	}
	var drop []string
	for _, n := range df.Names() {
		if !protected[n] && df.Col(n).HasNaN() {
			drop = append(drop, n)
		}
	}
	if len(drop) == 0 {
		return df
	}
	return df.Drop(drop)
}

// Column operators accepted by AddColumn.
var binaryOps = map[string]func(a, b float64) float64{
	"+":  func(a, b float64) float64 { return a + b },
	"-":  func(a, b float64) float64 { return a - b },
	"*":  func(a, b float64) float64 { return a * b },
	"/":  func(a, b float64) float64 { return a / b },
	"^":  math.Pow,
	"<":  func(a, b float64) float64 { return boolf(a < b) },
	"<=": func(a, b float64) float64 { return boolf(a <= b) },
	">":  func(a, b float64) float64 { return boolf(a > b) },
	">=": func(a, b float64) float64 { return boolf(a >= b) },
	"==": func(a, b float64) float64 { return boolf(a == b) },
	"!=": func(a, b float64) float64 { return boolf(a != b) },
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// AddColumn adds newCol to alias computed as "a op b". a is a column of
// alias (or an alias.column reference); b is a column, a reference or a
// number. The lag, diff and pct operators take b as the period count
// (default 1) and work within entities of an indexed panel.
func (s *Store) AddColumn(alias, newCol, a, op, b string) error {
	if newCol == "" {
		return fmt.Errorf("add: empty column name")
	}
	av, err := s.operand(alias, a)
	if err != nil {
		return err
	}

	var out []float64
	switch op {
	case "lag", "diff", "pct":
		periods := 1
		if b != "" {
			if periods, err = strconv.Atoi(b); err != nil || periods < 1 {
				return fmt.Errorf("%s: periods %q must be a positive integer", op, b)
			}
		}
		groups, err := s.groups(alias, len(av))
		if err != nil {
			return err
		}
		out = shiftOp(av, groups, op, periods)
	default:
		fn, ok := binaryOps[op]
		if !ok {
			return fmt.Errorf("operator %q: %w", op, ErrUnsupported)
		}
		var bv []float64
		if n, perr := strconv.ParseFloat(b, 64); perr == nil {
			bv = make([]float64, len(av))
			for i := range bv {
				bv[i] = n
			}
		} else if bv, err = s.operand(alias, b); err != nil {
			return err
		}
		if len(bv) != len(av) {
			return fmt.Errorf("%s %s %s: %w", a, op, b, ErrLengthMismatch)
		}
		out = make([]float64, len(av))
		for i := range av {
			if math.IsNaN(av[i]) || math.IsNaN(bv[i]) {
				out[i] = math.NaN()
				continue
			}
			out[i] = fn(av[i], bv[i])
		}
	}

	return s.update(alias, func(d *dataset) error {
		if d.df.Nrow() != len(out) {
			return fmt.Errorf("%s.%s: %w", alias, newCol, ErrLengthMismatch)
		}
		d.df = d.df.Mutate(series.New(out, series.Float, newCol))
		return d.df.Err
	})
}

// operand resolves "col" against alias, or a full "other.col" reference.
func (s *Store) operand(alias, ref string) ([]float64, error) {
	if !strings.Contains(ref, ".") {
		ref = alias + "." + ref
	} else if _, err := strconv.ParseFloat(ref, 64); err == nil {
		return nil, fmt.Errorf("%q: expected a column", ref)
	}
	return s.Floats(ref)
}

// groups returns the row indices of each entity of an indexed panel, or a
// single group covering every row.
func (s *Store) groups(alias string, n int) ([][]int, error) {
	entity, _, err := s.PanelIndex(alias)
	if err != nil {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return [][]int{all}, nil
	}
	return groupRows(entity), nil
}

// groupRows groups row positions by label, preserving first-seen order.
func groupRows(labels []string) [][]int {
	pos := map[string]int{}
	var out [][]int
	for i, l := range labels {
		g, ok := pos[l]
		if !ok {
			g = len(out)
			pos[l] = g
			out = append(out, nil)
		}
		out[g] = append(out[g], i)
	}
	return out
}

func shiftOp(v []float64, groups [][]int, op string, p int) []float64 {
	out := make([]float64, len(v))
	for i := range out {
		out[i] = math.NaN()
	}
	for _, g := range groups {
		for k := p; k < len(g); k++ {
			cur, prev := v[g[k]], v[g[k-p]]
			switch op {
			case "lag":
				out[g[k]] = prev
			case "diff":
				out[g[k]] = cur - prev
			case "pct":
				out[g[k]] = cur/prev - 1
			}
		}
	}
	return out
}

// DeleteColumn removes a column.
func (s *Store) DeleteColumn(alias, col string) error {
	return s.update(alias, func(d *dataset) error {
		if !hasColumn(d.df, col) {
			return fmt.Errorf("%s.%s: %w", alias, col, ErrColumnNotFound)
		}
		for _, c := range d.index {
			if c == col {
				return fmt.Errorf("%s.%s is part of the index", alias, col)
			}
		}
		d.df = d.df.Drop(col)
		return d.df.Err
	})
}

// Rename renames a column, keeping the index in step.
func (s *Store) Rename(alias, oldName, newName string) error {
	return s.update(alias, func(d *dataset) error {
		if !hasColumn(d.df, oldName) {
			return fmt.Errorf("%s.%s: %w", alias, oldName, ErrColumnNotFound)
		}
		if hasColumn(d.df, newName) {
			return fmt.Errorf("%s.%s already exists", alias, newName)
		}
		d.df = d.df.Rename(newName, oldName)
		for i, c := range d.index {
			if c == oldName {
				d.index[i] = newName
			}
		}
		if d.hidden[oldName] {
			delete(d.hidden, oldName)
			d.hidden[newName] = true
		}
		return d.df.Err
	})
}

// Combine copies columns of source into target as "<source>_<column>".
// When both datasets share their index columns rows are matched on the
// index; otherwise they are matched by position and must be equally long.
func (s *Store) Combine(target, source string, cols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dt, err := s.get(target)
	if err != nil {
		return err
	}
	ds, err := s.get(source)
	if err != nil {
		return err
	}

	rowOf, err := alignRows(dt, ds)
	if err != nil {
		return fmt.Errorf("combine %s into %s: %w", source, target, err)
	}
	df := dt.df
	for _, c := range cols {
		src, err := ds.column(source, c)
		if err != nil {
			return err
		}
		recs := src.Records()
		vals := make([]string, len(rowOf))
		for i, j := range rowOf {
			vals[i] = "NaN"
			if j >= 0 && !src.Elem(j).IsNA() {
				vals[i] = recs[j]
			}
		}
		df = df.Mutate(series.New(vals, src.Type(), source+"_"+c))
	}
	if df.Err != nil {
		return df.Err
	}
	dt.df = df
	return nil
}

// alignRows maps each target row to a source row, -1 when absent.
func alignRows(dt, ds *dataset) ([]int, error) {
	n := dt.df.Nrow()
	out := make([]int, n)
	if len(dt.index) > 0 && equalStrings(dt.index, ds.index) {
		pos := make(map[string]int, ds.df.Nrow())
		for j, k := range indexKeys(ds) {
			pos[k] = j
		}
		for i, k := range indexKeys(dt) {
			if j, ok := pos[k]; ok {
				out[i] = j
			} else {
				out[i] = -1
			}
		}
		return out, nil
	}
	if ds.df.Nrow() != n {
		return nil, ErrLengthMismatch
	}
	for i := range out {
		out[i] = i
	}
	return out, nil
}

func indexKeys(d *dataset) []string {
	keys := make([]string, d.df.Nrow())
	for _, c := range d.index {
		for i, r := range d.df.Col(c).Records() {
			keys[i] += r + "\x00"
		}
	}
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Types returns the gota type of every column.
func (s *Store) Types(alias string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.get(alias)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, d.df.Ncol())
	for i, t := range d.df.Types() {
		out[d.df.Names()[i]] = string(t)
	}
	return out, nil
}

// ChangeType converts a column to float, int, string or bool.
func (s *Store) ChangeType(alias, col, typ string) error {
	var t series.Type
	switch strings.ToLower(typ) {
	case "float", "float64":
		t = series.Float
	case "int", "integer":
		t = series.Int
	case "string", "str", "object":
		t = series.String
	case "bool", "boolean":
		t = series.Bool
	default:
		return fmt.Errorf("type %q: %w", typ, ErrUnsupported)
	}
	return s.update(alias, func(d *dataset) error {
		if !hasColumn(d.df, col) {
			return fmt.Errorf("%s.%s: %w", alias, col, ErrColumnNotFound)
		}
		src := d.df.Col(col)
		conv := series.New(src.Records(), t, col)
		if conv.Err != nil {
			return fmt.Errorf("%s.%s to %s: %w", alias, col, typ, conv.Err)
		}
		d.df = d.df.Mutate(conv)
		return d.df.Err
	})
}
