package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// DefaultResultKey is the list field of a ServiceNow table API response.
const DefaultResultKey = "result"

// JSON extracts one record per item of a top-level result list. Nested
// objects are flattened into dotted field names.
type JSON struct {
	ResultKey string
	// Fields, when set, are guaranteed to be present on every record.
	Fields []string
}

// Extract implements Extractor.
func (j JSON) Extract(payload []byte) (iter.Seq[table.Record], error) {
	key := j.ResultKey
	if key == "" {
		key = DefaultResultKey
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Format: FormatJSON, Reason: "invalid document", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: FormatJSON, Reason: "trailing data after document", Err: err}
	}
	raw, ok := doc[key]
	if !ok {
		return nil, &ParseError{Format: FormatJSON, Reason: fmt.Sprintf("missing %q key", key)}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Format: FormatJSON, Reason: fmt.Sprintf("%q is not a list", key)}
	}
	objects := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Format: FormatJSON, Reason: fmt.Sprintf("%s[%d] is not an object", key, i)}
		}
		objects = append(objects, obj)
	}

	return func(yield func(table.Record) bool) {
		for _, obj := range objects {
			rec := table.Record{}
			flatten("", obj, rec)
			for _, field := range j.Fields {
				if _, ok := rec[field]; !ok {
					rec[field] = table.Null
				}
			}
			if !yield(rec) {
				return
			}
		}
	}, nil
}

func flatten(prefix string, obj map[string]any, rec table.Record) {
	for k, v := range obj {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(name, nested, rec)
			continue
		}
		rec[name] = jsonValue(v)
	}
}

func jsonValue(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return table.Null
	case string:
		return table.String(x)
	case bool:
		return table.Bool(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return table.Number(f)
		}
		return table.String(x.String())
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return table.String(fmt.Sprint(x))
		}
		return table.String(string(b))
	}
}
