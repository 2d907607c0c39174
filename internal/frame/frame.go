// Package frame turns provider fetch results into gota DataFrames and prints
// DataFrames as console tables.
package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

// ErrNoRows is returned when a result holds no records.
var ErrNoRows = errors.New("no rows")

// FromResult converts the data of a fetch result into a DataFrame.
func FromResult(res *provider.FetchResult) (dataframe.DataFrame, error) {
	if res == nil {
		return dataframe.DataFrame{}, ErrNoRows
	}
	return FromData(res.Data)
}

// FromData converts a struct, a slice of structs or a slice of maps into a
// DataFrame. Records go through a JSON round-trip so column names follow
// the json tags. Nested objects are flattened as "parent_child" and columns
// keep the field order of the first record.
func FromData(data any) (dataframe.DataFrame, error) {
	switch ob := data.(type) {
	case models.OrderBook:
		data = ob.Levels()
	case *models.OrderBook:
		data = ob.Levels()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("encode records: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		raw = append(append([]byte{'['}, raw...), ']')
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("records must be objects: %w", err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, ErrNoRows
	}

	var (
		order []string
		seen  = map[string]bool{}
		maps  = make([]map[string]any, 0, len(records))
	)
	for _, rec := range records {
		keys, err := objectKeys(rec)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		var m map[string]any
		if err := json.Unmarshal(rec, &m); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("decode record: %w", err)
		}
		flat := make(map[string]any, len(m))
		for _, k := range keys {
			flatten(k, m[k], flat, func(name string) {
				if !seen[name] {
					seen[name] = true
					order = append(order, name)
				}
			})
		}
		maps = append(maps, flat)
	}

	// LoadMaps sorts columns and prints absent keys as "". Fill every
	// column so missing values become NaN, then restore field order.
	for _, m := range maps {
		for _, name := range order {
			if v, ok := m[name]; !ok || v == nil {
				m[name] = "NaN"
			}
		}
	}
	df := dataframe.LoadMaps(maps).Select(order)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build dataframe: %w", df.Err)
	}
	return df, nil
}

// flatten writes v under prefix into out, descending into nested objects.
// Arrays are kept as their JSON text.
func flatten(prefix string, v any, out map[string]any, add func(string)) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sortStrings(keys)
		for _, k := range keys {
			flatten(prefix+"_"+k, t[k], out, add)
		}
	case []any:
		b, _ := json.Marshal(t)
		out[prefix] = string(b)
		add(prefix)
	default:
		out[prefix] = t
		add(prefix)
	}
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("record is not an object: %s", strings.TrimSpace(string(raw[:min(len(raw), 40)])))
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("read value: %w", err)
		}
	}
	return keys, nil
}
