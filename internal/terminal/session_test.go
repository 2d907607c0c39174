package terminal

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finterm/internal/config"
	"github.com/seenimoa/finterm/internal/provider"
)

// ── Fake provider ──

type bar struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type barFetcher struct {
	provider.BaseFetcher
}

func (f *barFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func() (any, error) {
		base := 100.0
		if params[provider.ParamSymbol] == "MSFT" {
			base = 300
		}
		return []bar{
			{"2024-01-02", base + 1},
			{"2024-01-03", base + 2.5},
			{"2024-01-04", base + 2},
		}, nil
	})
}

type fakeProvider struct {
	provider.BaseProvider
}

func newTestRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	p := &fakeProvider{BaseProvider: provider.NewBaseProvider("fake", "Fake vendor", "https://example.com", nil)}
	p.RegisterFetcher(&barFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelEquityHistorical, "daily bars",
			[]string{provider.ParamSymbol}, []string{provider.ParamStartDate}),
	})
	require.NoError(t, p.Init(nil))
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(p))
	return reg
}

func newTestSession(t *testing.T, input string) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.Terminal.MaxRows = 10
	cfg.Terminal.HistorySize = 50
	return NewSessionWithIO(cfg, newTestRegistry(t), nil, strings.NewReader(input), &out), &out
}

// lcg is a small deterministic noise source for the regression fixtures.
type lcg uint32

func (l *lcg) next() float64 {
	*l = lcg(uint32(*l)*1103515245 + 12345)
	return float64(uint32(*l)>>8)/float64(1<<24) - 0.5
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func seriesCSV(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("t,x,y\n")
	noise := lcg(7)
	x := 0.0
	for i := 0; i < n; i++ {
		x += noise.next()
		y := 1 + 2*x + noise.next()
		fmt.Fprintf(&sb, "%d,%.6f,%.6f\n", i, x, y)
	}
	return writeFile(t, "series.csv", sb.String())
}

func panelCSV(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("firm,year,x,y\n")
	noise := lcg(11)
	for f := 0; f < 6; f++ {
		for yr := 2015; yr < 2023; yr++ {
			x := float64(f) + 3*noise.next() + 0.2*float64(yr-2015)
			y := 2*float64(f) + 1.5*x + 0.3*noise.next()
			fmt.Fprintf(&sb, "f%d,%d,%.6f,%.6f\n", f, yr, x, y)
		}
	}
	return writeFile(t, "panel.csv", sb.String())
}

// ── Loop and dot-commands ──

func TestRunDotCommands(t *testing.T) {
	s, out := newTestSession(t, "show\n.history\n.clear\n.history\n.nope\n.quit\nshow\n")
	require.NoError(t, s.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "finterm interactive shell")
	assert.Contains(t, got, "No datasets loaded.")
	assert.Contains(t, got, "  1  show")
	assert.Contains(t, got, "History cleared.")
	assert.Contains(t, got, "Unknown command: .nope")
	assert.Contains(t, got, "Goodbye!")
	assert.Equal(t, 1, strings.Count(got, "No datasets loaded."), "nothing runs after .quit")
	assert.Empty(t, s.History())
}

func TestRunReportsErrorsAndContinues(t *testing.T) {
	s, out := newTestSession(t, "bogus\nremove nothing\nshow\nquit\n")
	require.NoError(t, s.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, `error: unknown command "bogus"`)
	assert.Contains(t, got, "error: nothing: dataset not found")
	assert.Contains(t, got, "No datasets loaded.")
	assert.Contains(t, got, "Goodbye!")
}

func TestRunCustomPrompt(t *testing.T) {
	var out bytes.Buffer
	cfg := &config.Config{}
	cfg.Terminal.Prompt = "ft$ "
	s := NewSessionWithIO(cfg, provider.NewRegistry(), nil, strings.NewReader(""), &out)
	require.NoError(t, s.Run(context.Background()))
	assert.True(t, strings.HasSuffix(out.String(), "ft$ "))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	s, _ := newTestSession(t, "show\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestHistoryIsCapped(t *testing.T) {
	s, _ := newTestSession(t, "show\nproviders\nshow\n")
	s.cfg.Terminal.HistorySize = 2
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"providers", "show"}, s.History())
}

func TestSessionID(t *testing.T) {
	a, _ := newTestSession(t, "")
	b, _ := newTestSession(t, "")
	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRunFile(t *testing.T) {
	script := writeFile(t, "script.txt", "# setup\nshow\n\nbogus\nquit\nshow\n")
	s, out := newTestSession(t, "")
	require.NoError(t, s.RunFile(context.Background(), script))

	got := out.String()
	assert.NotContains(t, got, "interactive shell", "scripts run without banner")
	assert.NotContains(t, got, "# setup")
	assert.Contains(t, got, "finterm> show\n")
	assert.Contains(t, got, "error: unknown command")
	assert.Equal(t, 1, strings.Count(got, "finterm> show"))

	assert.Error(t, s.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")))
}

// ── Providers and fetch ──

func TestProvidersCommand(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()

	require.NoError(t, s.Execute(ctx, "providers"))
	assert.Contains(t, out.String(), "Fake vendor")
	assert.Contains(t, out.String(), "EquityHistorical")

	out.Reset()
	require.NoError(t, s.Execute(ctx, "providers equityhistorical"))
	assert.Contains(t, out.String(), "fake")
	assert.Contains(t, out.String(), "*")

	out.Reset()
	require.NoError(t, s.Execute(ctx, "providers --coverage"))
	assert.Contains(t, out.String(), "Crypto / On-Chain")

	assert.Error(t, s.Execute(ctx, "providers CryptoQuote"))
	assert.Error(t, s.Execute(ctx, "providers NoSuchModel"))
}

func TestFetchCommand(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()

	require.NoError(t, s.Execute(ctx, "fetch EquityHistorical -s AAPL --as aapl"))
	got := out.String()
	assert.Contains(t, got, "EquityHistorical from fake")
	assert.Contains(t, got, `Stored as dataset "aapl".`)
	assert.Contains(t, got, "2024-01-03")
	assert.Contains(t, got, "102.5")

	infos := s.Workspace().Data.List()
	require.Len(t, infos, 1)
	assert.Equal(t, "aapl", infos[0].Alias)
	assert.Equal(t, 3, infos[0].Rows)
	assert.Equal(t, "fake:EquityHistorical", infos[0].Source)

	out.Reset()
	require.NoError(t, s.Execute(ctx, "fetch EquityHistorical symbol=AAPL --rows 1"))
	assert.Contains(t, out.String(), "(cached)")
	assert.Contains(t, out.String(), "2 more rows")
}

func TestFetchCommandErrors(t *testing.T) {
	s, _ := newTestSession(t, "")
	ctx := context.Background()

	err := s.Execute(ctx, "fetch EquityHistorical")
	var missing *provider.ErrMissingParam
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, provider.ParamSymbol, missing.Param)

	assert.ErrorContains(t, s.Execute(ctx, "fetch Nope -s AAPL"), "unknown model")
	assert.ErrorContains(t, s.Execute(ctx, "fetch EquityHistorical -s AAPL _api_key=x"), "reserved")
	assert.ErrorContains(t, s.Execute(ctx, "fetch EquityHistorical -s AAPL novalue"), "key=value")

	var notFound *provider.ErrProviderNotFound
	assert.ErrorAs(t, s.Execute(ctx, "fetch EquityHistorical -s AAPL -p other"), &notFound)
	assert.ErrorContains(t, s.Execute(ctx, "fetch CryptoQuote -s BTC"), "no provider registered")
}

func TestLoadSymbols(t *testing.T) {
	s, out := newTestSession(t, "")
	require.NoError(t, s.Execute(context.Background(), "load px --symbols AAPL,MSFT --model EquityHistorical"))
	assert.Contains(t, out.String(), `Loaded "px": 6 rows`)

	infos := s.Workspace().Data.List()
	require.Len(t, infos, 1)
	assert.Equal(t, []string{"symbol", "date"}, infos[0].Index)

	closes, err := s.Workspace().Series("px.close")
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 102.5, 102, 301, 302.5, 302}, closes)

	assert.Error(t, s.Execute(context.Background(), "load nothing"))
	assert.Error(t, s.Execute(context.Background(), "load both file.csv --symbols AAPL"))
}

// ── Dataset commands ──

func TestDatasetCommands(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()
	path := seriesCSV(t, 30)

	steps := []string{
		"load d " + path,
		"show d --rows 3",
		"desc d",
		"add d x2 x * 2",
		"add d dx x diff",
		"rename d x2 double",
		"type d",
		"type d t string",
		"clean d --drop rdrop",
		"delete d double",
		"show",
	}
	for _, line := range steps {
		require.NoError(t, s.Execute(ctx, line), line)
	}
	got := out.String()
	assert.Contains(t, got, `Loaded "d": 30 rows, 3 columns.`)
	assert.Contains(t, got, "27 more rows")
	assert.Contains(t, got, "Renamed d.x2 to double.")

	types, err := s.Workspace().Data.Types("d")
	require.NoError(t, err)
	assert.Equal(t, "string", types["t"])
	assert.NotContains(t, types, "double")

	dx, err := s.Workspace().Series("d.dx")
	require.NoError(t, err)
	assert.Len(t, dx, 29, "the first diff row was dropped")

	require.NoError(t, s.Execute(ctx, "remove d"))
	assert.Empty(t, s.Workspace().Data.List())

	assert.Error(t, s.Execute(ctx, "type d t"))
	assert.Error(t, s.Execute(ctx, "clean d"))
}

// ── Econometrics commands ──

func TestRegressionAndDiagnostics(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()
	require.NoError(t, s.Execute(ctx, "load d "+seriesCSV(t, 80)))

	require.NoError(t, s.Execute(ctx, "ols d.y d.x"))
	assert.Contains(t, out.String(), "OLS regression of d.y on d.x (data: d)")

	fit, err := s.Workspace().Models.Get("OLS")
	require.NoError(t, err)
	c, ok := fit.Model.Coef("d.x")
	require.True(t, ok)
	assert.InDelta(t, 2.0, c.Value, 0.2)

	for _, line := range []string{
		"ols d.y d.x --cov robust",
		"dwat",
		"bgod --lags 2",
		"bpag",
		"residuals",
		"root d.x",
		"root d.y --regression ct",
		"root d.x --autolag BIC --maxlag 3 --nlags legacy",
		"root d.x --regression n --autolag none --maxlag 2",
		"granger d.y d.x --lags 2",
		"coint d.y d.x",
		"norm d.y",
		"corr d.x d.y --method spearman",
		"compare",
	} {
		out.Reset()
		require.NoError(t, s.Execute(ctx, line), line)
		assert.NotEmpty(t, out.String(), line)
	}

	assert.Error(t, s.Execute(ctx, "dwat --type FE"), "no FE fit yet")
	assert.Error(t, s.Execute(ctx, "ols d.y d.x --cov weird"))
	assert.Error(t, s.Execute(ctx, "root d.x --regression x"))
	assert.Error(t, s.Execute(ctx, "root d.x --autolag HQIC"))
	assert.Error(t, s.Execute(ctx, "root d.x --nlags many"))

	out.Reset()
	require.NoError(t, s.Execute(ctx, "root d.x --regression n"))
	assert.Contains(t, out.String(), "KPSS needs a constant and was skipped")
	assert.Error(t, s.Execute(ctx, "corr d.x"))
}

func TestPanelCommands(t *testing.T) {
	s, out := newTestSession(t, "")
	ctx := context.Background()
	require.NoError(t, s.Execute(ctx, "load w "+panelCSV(t)))

	assert.Error(t, s.Execute(ctx, "panel w.y w.x --type FE"), "needs an index")
	require.NoError(t, s.Execute(ctx, "index w firm year"))

	for _, kind := range []string{"POLS", "RE", "BOLS", "FE", "FDOLS"} {
		out.Reset()
		require.NoError(t, s.Execute(ctx, "panel w.y w.x --type "+kind), kind)
		assert.Contains(t, out.String(), kind+" regression")
	}
	fe, err := s.Workspace().Models.Get("FE")
	require.NoError(t, err)
	c, ok := fe.Model.Coef("w.x")
	require.True(t, ok)
	assert.InDelta(t, 1.5, c.Value, 0.1)

	assert.Error(t, s.Execute(ctx, "panel w.y w.x --type OLS"))

	out.Reset()
	require.NoError(t, s.Execute(ctx, "compare"))
	for _, kind := range []string{"POLS", "RE", "BOLS", "FE", "FDOLS"} {
		assert.Contains(t, out.String(), kind)
	}
	assert.Equal(t, 5, len(s.Workspace().Models.Kinds()))
}

// ── Word splitting ──

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  show   d ", []string{"show", "d"}},
		{`fetch WorldNews -q "interest rates"`, []string{"fetch", "WorldNews", "-q", "interest rates"}},
		{`load d 'my file.csv'`, []string{"load", "d", "my file.csv"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`say 'it\s'`, []string{"say", `it\s`}},
		{`x ""`, []string{"x", ""}},
		{"show d # all rows", []string{"show", "d"}},
	}
	for _, tt := range tests {
		got, err := splitWords(tt.in)
		require.NoError(t, err, tt.in)
		if len(tt.want) == 0 {
			assert.Empty(t, got, tt.in)
			continue
		}
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := splitWords(`fetch "open`)
	assert.Error(t, err)
	_, err = splitWords(`trailing\`)
	assert.Error(t, err)
}

func TestExecuteQuotedPath(t *testing.T) {
	s, _ := newTestSession(t, "")
	ctx := context.Background()
	path := writeFile(t, "my series.csv", "t,x\n1,2\n2,3\n")

	require.NoError(t, s.Execute(ctx, `load d '`+path+`'`))
	x, err := s.Workspace().Series("d.x")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, x)

	assert.Error(t, s.Execute(ctx, `load e "`+path))
}

func TestFormatP(t *testing.T) {
	assert.Equal(t, "0.0500", formatP(0.05))
	assert.Equal(t, "1.00e-06", formatP(1e-6))
	assert.Equal(t, "", formatP(math.NaN()))
}
