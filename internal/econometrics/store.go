package econometrics

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finterm/pkg/utils"
)

var aliasPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// maxConcurrentLoads bounds parallel symbol downloads in LoadSymbols.
const maxConcurrentLoads = 4

// Store holds loaded datasets keyed by alias. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*dataset
}

type dataset struct {
	df     dataframe.DataFrame
	index  []string        // entity/time columns, in that order
	hidden map[string]bool // index columns dropped from the regular columns
	source string
}

// DatasetInfo summarises a loaded dataset.
type DatasetInfo struct {
	Alias  string   `json:"alias"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Index  []string `json:"index,omitempty"`
	Source string   `json:"source"`
}

// NewStore creates an empty dataset store.
func NewStore() *Store {
	return &Store{datasets: make(map[string]*dataset)}
}

// SplitRef splits "alias.column" at the first dot.
func SplitRef(ref string) (alias, column string, err error) {
	i := strings.IndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("%q: want alias.column", ref)
	}
	return ref[:i], ref[i+1:], nil
}

func checkAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("alias %q: use lower-case letters, digits and underscores", alias)
	}
	return nil
}

// Load reads a CSV, XLSX or JSON file into a new dataset.
func (s *Store) Load(alias, path string) error {
	if err := checkAlias(alias); err != nil {
		return err
	}
	df, err := readFile(path)
	if err != nil {
		return err
	}
	return s.put(alias, &dataset{df: df, source: path})
}

func readFile(path string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		defer f.Close()
		return checked(dataframe.ReadCSV(f), path)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		defer f.Close()
		return checked(dataframe.ReadJSON(f), path)
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w: file type %q", path, ErrUnsupported, filepath.Ext(path))
	}
}

// readXLSX loads the first sheet; its first row is the header.
func readXLSX(path string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", path, ErrInsufficientData)
	}
	// GetRows trims trailing empty cells; pad to the header width.
	width := len(rows[0])
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		for j := range r {
			if r[j] == "" {
				r[j] = "NaN"
			}
		}
		rows[i] = r[:width]
	}
	return checked(dataframe.LoadRecords(rows), path)
}

func checked(df dataframe.DataFrame, what string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", what, df.Err)
	}
	return df, nil
}

// LoadFrame stores an existing DataFrame, e.g. a provider fetch result.
func (s *Store) LoadFrame(alias string, df dataframe.DataFrame, source string) error {
	if err := checkAlias(alias); err != nil {
		return err
	}
	if df.Err != nil {
		return df.Err
	}
	return s.put(alias, &dataset{df: df, source: source})
}

// FrameFetcher returns the data of one symbol as a DataFrame.
type FrameFetcher func(ctx context.Context, symbol string) (dataframe.DataFrame, error)

// LoadSymbols fetches every symbol concurrently and stacks the frames into
// one long panel indexed by (symbol, date). Columns missing from any frame
// are dropped.
func (s *Store) LoadSymbols(ctx context.Context, alias string, symbols []string, fetch FrameFetcher) error {
	if err := checkAlias(alias); err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("load %s: %w: no symbols", alias, ErrInsufficientData)
	}

	frames := make([]dataframe.DataFrame, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, sym := range symbols {
		g.Go(func() error {
			df, err := fetch(gctx, sym)
			if err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
			frames[i] = normalizePanelFrame(df, strings.ToUpper(sym))
			if frames[i].Err != nil {
				return fmt.Errorf("%s: %w", sym, frames[i].Err)
			}
			if !slices.Contains(frames[i].Names(), "date") {
				return fmt.Errorf("%s: no date or timestamp column: %w", sym, ErrNotPanel)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	common := commonColumns(frames)
	stacked := frames[0].Select(common)
	for _, f := range frames[1:] {
		stacked = stacked.RBind(f.Select(common))
	}
	if stacked.Err != nil {
		return fmt.Errorf("stack frames: %w", stacked.Err)
	}
	stacked = stacked.Arrange(dataframe.Sort("symbol"), dataframe.Sort("date"))
	if stacked.Err != nil {
		return fmt.Errorf("sort panel: %w", stacked.Err)
	}

	return s.put(alias, &dataset{
		df:     stacked,
		index:  []string{"symbol", "date"},
		source: "fetch:" + strings.Join(symbols, ","),
	})
}

// normalizePanelFrame guarantees "symbol" and "date" columns.
func normalizePanelFrame(df dataframe.DataFrame, symbol string) dataframe.DataFrame {
	names := map[string]bool{}
	for _, n := range df.Names() {
		names[n] = true
	}
	if !names["date"] {
		for _, alt := range []string{"timestamp", "Date", "time"} {
			if names[alt] {
				df = df.Rename("date", alt)
				break
			}
		}
	}
	nrow := df.Nrow()
	sym := make([]string, nrow)
	for i := range sym {
		sym[i] = symbol
	}
	return df.Mutate(series.New(sym, series.String, "symbol"))
}

func commonColumns(frames []dataframe.DataFrame) []string {
	count := map[string]int{}
	for _, f := range frames {
		for _, n := range f.Names() {
			count[n]++
		}
	}
	var out []string
	for _, n := range frames[0].Names() {
		if count[n] == len(frames) {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) put(alias string, d *dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[alias]; ok {
		return fmt.Errorf("%s: %w", alias, ErrDatasetExists)
	}
	s.datasets[alias] = d
	return nil
}

func (s *Store) get(alias string) (*dataset, error) {
	d, ok := s.datasets[alias]
	if !ok {
		return nil, fmt.Errorf("%s: %w", alias, ErrDatasetNotFound)
	}
	return d, nil
}

// Remove deletes a dataset.
func (s *Store) Remove(alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(alias); err != nil {
		return err
	}
	delete(s.datasets, alias)
	return nil
}

// List returns every dataset, sorted by alias.
func (s *Store) List() []DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DatasetInfo, 0, len(s.datasets))
	for alias, d := range s.datasets {
		nrow, ncol := d.df.Dims()
		out = append(out, DatasetInfo{
			Alias:  alias,
			Rows:   nrow,
			Cols:   ncol,
			Index:  append([]string(nil), d.index...),
			Source: d.source,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

// Get returns a copy of a dataset's DataFrame.
func (s *Store) Get(alias string) (dataframe.DataFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.get(alias)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return d.df.Copy(), nil
}

// Describe returns summary statistics of every column.
func (s *Store) Describe(alias string) (dataframe.DataFrame, error) {
	df, err := s.Get(alias)
	if err != nil {
		return df, err
	}
	return df.Describe(), nil
}

// Index sets the entity and time columns used by panel estimators and
// sorts the rows by them. With drop the columns stop being addressable as
// regular columns.
func (s *Store) Index(alias string, cols []string, drop bool) error {
	if len(cols) == 0 || len(cols) > 2 {
		return fmt.Errorf("index %s: want one or two columns (entity, time)", alias)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.get(alias)
	if err != nil {
		return err
	}
	order := make([]dataframe.Order, 0, len(cols))
	for _, c := range cols {
		if !hasColumn(d.df, c) {
			return fmt.Errorf("%s.%s: %w", alias, c, ErrColumnNotFound)
		}
		order = append(order, dataframe.Sort(c))
	}
	sorted := d.df.Arrange(order...)
	if sorted.Err != nil {
		return sorted.Err
	}
	d.df = sorted
	d.index = append([]string(nil), cols...)
	d.hidden = nil
	if drop {
		d.hidden = make(map[string]bool, len(cols))
		for _, c := range cols {
			d.hidden[c] = true
		}
	}
	return nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// column returns a regular (non-hidden) column of a dataset.
func (d *dataset) column(alias, name string) (series.Series, error) {
	if d.hidden[name] || !hasColumn(d.df, name) {
		return series.Series{}, fmt.Errorf("%s.%s: %w", alias, name, ErrColumnNotFound)
	}
	return d.df.Col(name), nil
}

// Floats returns a referenced column as float64 values; NA becomes NaN.
func (s *Store) Floats(ref string) ([]float64, error) {
	alias, col, err := SplitRef(ref)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.get(alias)
	if err != nil {
		return nil, err
	}
	sr, err := d.column(alias, col)
	if err != nil {
		return nil, err
	}
	return numeric(sr, ref)
}

// numeric converts a series to floats, rejecting non-numeric text.
func numeric(sr series.Series, ref string) ([]float64, error) {
	vals := sr.Float()
	if sr.Type() == series.String {
		for i, v := range vals {
			if math.IsNaN(v) && !sr.Elem(i).IsNA() {
				return nil, fmt.Errorf("%s is not numeric (row %d: %q)", ref, i, sr.Elem(i).String())
			}
		}
	}
	return vals, nil
}

// PanelIndex returns the entity labels and time ordering keys of a dataset
// indexed by two columns.
func (s *Store) PanelIndex(alias string) (entity []string, period []float64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.get(alias)
	if err != nil {
		return nil, nil, err
	}
	if len(d.index) != 2 {
		return nil, nil, fmt.Errorf("%s: %w", alias, ErrNotPanel)
	}
	entity = d.df.Col(d.index[0]).Records()
	period = timeKeys(d.df.Col(d.index[1]))
	return entity, period, nil
}

// timeKeys maps a time column to sortable numbers: dates become Unix
// seconds, numbers stay as they are, other text is ranked.
func timeKeys(sr series.Series) []float64 {
	recs := sr.Records()
	out := make([]float64, len(recs))
	if sr.Type() == series.Int || sr.Type() == series.Float {
		copy(out, sr.Float())
		return out
	}
	dates := true
	for i, r := range recs {
		t, err := utils.ParseDate(r)
		if err != nil {
			dates = false
			break
		}
		out[i] = float64(t.Unix())
	}
	if dates {
		return out
	}
	uniq := append([]string(nil), recs...)
	sort.Strings(uniq)
	rank := make(map[string]float64, len(uniq))
	for _, u := range uniq {
		if _, ok := rank[u]; !ok {
			rank[u] = float64(len(rank))
		}
	}
	for i, r := range recs {
		out[i] = rank[r]
	}
	return out
}

// update applies fn to a dataset under the write lock.
func (s *Store) update(alias string, fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.get(alias)
	if err != nil {
		return err
	}
	return fn(d)
}
