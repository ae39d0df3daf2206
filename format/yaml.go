package format

import "gopkg.in/yaml.v3"

// YAML decodes and encodes bodies with gopkg.in/yaml.v3.
type YAML struct{}

var _ Format = YAML{}

func (YAML) Name() string        { return "yaml" }
func (YAML) Accept() string      { return MIMEYAML }
func (YAML) ContentType() string { return MIMEYAML }

func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func (YAML) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }
