package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a compact JSON codec backed by github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

func (GoJSON) Name() string { return "go-json" }

// Pretty writes indented JSON for result files that are read by people.
type Pretty struct{}

func (Pretty) Marshal(v any) ([]byte, error) { return gojson.MarshalIndent(v, "", "  ") }

func (Pretty) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

func (Pretty) Name() string { return "pretty" }
