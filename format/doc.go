// Package format defines the wire formats used to decode response bodies and
// to advertise accepted and sent content types.
//
// A Format is a stateless strategy. Formats are zero-size types so they can be
// selected at the type level:
//
//	client, _ := httpclient.New[format.JSON](cfg)
//
// Decoding is pure: it either returns a fully decoded value or a *DecodeError,
// never a partially populated value.
//
//	pet, err := format.Decode[Pet](format.JSON{}, body)
package format
