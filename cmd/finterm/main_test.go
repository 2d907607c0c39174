package main

import (
	"slices"
	"testing"
)

func TestPassthroughFetchFlags(t *testing.T) {
	if err := fetchCmd.ParseFlags([]string{"-s", "AAPL", "--fallback", "--start", "2024-01-01"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	t.Cleanup(func() {
		for _, name := range []string{"symbol", "fallback", "start"} {
			f := fetchCmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	got := passthrough(fetchCmd, []string{"EquityHistorical", "adjusted=true"})
	want := []string{
		"EquityHistorical", "adjusted=true",
		"--fallback=true", "--start=2024-01-01", "--symbol=AAPL",
		"--rows=0",
	}
	if !slices.Equal(got, want) {
		t.Errorf("passthrough = %v\nwant %v", got, want)
	}
}

func TestPassthroughProvidersCoverage(t *testing.T) {
	if got := passthrough(providersCmd, []string{"EquityQuote"}); !slices.Equal(got, []string{"EquityQuote"}) {
		t.Errorf("no flags set: %v", got)
	}

	if err := providersCmd.ParseFlags([]string{"--coverage"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		f := providersCmd.Flags().Lookup("coverage")
		_ = f.Value.Set("false")
		f.Changed = false
	})
	if got := passthrough(providersCmd, nil); !slices.Equal(got, []string{"--coverage=true"}) {
		t.Errorf("coverage: %v", got)
	}
}
