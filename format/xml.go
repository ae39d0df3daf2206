package format

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// XML is the markup wire format.
type XML struct{}

var _ Format = XML{}

func (XML) Name() string        { return "xml" }
func (XML) Accept() string      { return MIMEXML }
func (XML) ContentType() string { return MIMEXML }

// Unmarshal decodes exactly one root element into v. Anything but comments,
// processing instructions and whitespace after the root is an error, as is a
// target of interface type, which encoding/xml would leave untouched.
func (XML) Unmarshal(data []byte, v any) error {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() == reflect.Interface {
		return fmt.Errorf("xml: cannot decode into %T, need a pointer to a concrete type", v)
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	if err := d.Decode(v); err != nil {
		return err
	}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(tok)) > 0 {
				return fmt.Errorf("xml: unexpected text %q after root element", bytes.TrimSpace(tok))
			}
		default:
			return fmt.Errorf("xml: unexpected %T after root element", tok)
		}
	}
}

func (XML) Marshal(v any) ([]byte, error) { return xml.Marshal(v) }
