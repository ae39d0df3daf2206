package format

import "encoding/json"

// JSON is the structured-text wire format.
type JSON struct{}

var _ Format = JSON{}

func (JSON) Name() string        { return "json" }
func (JSON) Accept() string      { return MIMEJSON }
func (JSON) ContentType() string { return MIMEJSON }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
