// Package contract declares the data shapes exchanged with callers and with
// the generation capability, and validates candidates against them.
//
// A Contract is declared once and used for three things: validating caller
// input, validating what the model returns, and describing the output shape
// to the model as a JSON schema.
package contract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/kalambet/vitae/internal/engine"
)

// Field declares one string field of a Contract.
type Field struct {
	Name        string
	Description string
	Required    bool
	// MinLength is the minimum length in characters (runes). The value is
	// not trimmed before counting.
	MinLength int
	// URL requires a non-empty value to be an absolute http(s) URL.
	URL bool
	// Message replaces the default minimum length failure message.
	Message string
}

// Contract is a named record shape made of string fields.
type Contract struct {
	Name   string
	Fields []Field
}

// ValidationError reports the first field of a candidate that failed
// validation. Error returns the human-readable message only.
type ValidationError struct {
	Contract string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks candidate against the contract and returns the first
// failure, in field declaration order. Candidate may be a struct, a map, raw
// JSON bytes or, for single-field contracts, a bare string.
func (c Contract) Validate(candidate any) error {
	_, err := c.normalize(candidate)
	return err
}

// Schema describes the contract as a JSON object schema.
func (c Contract) Schema() *engine.Schema {
	s := &engine.Schema{
		Type:       "object",
		Properties: make(map[string]engine.SchemaProperty, len(c.Fields)),
	}
	for _, f := range c.Fields {
		p := engine.SchemaProperty{Type: "string", Description: f.Description, MinLength: f.MinLength}
		if f.URL {
			p.Format = "uri"
		}
		s.Properties[f.Name] = p
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

// Decode validates candidate against c and converts it into T.
func Decode[T any](c Contract, candidate any) (T, error) {
	var out T
	fields, err := c.normalize(candidate)
	if err != nil {
		return out, err
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return out, c.fail("", fmt.Sprintf("%s: %v", c.Name, err))
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, c.fail("", fmt.Sprintf("%s: %v", c.Name, err))
	}
	return out, nil
}

func (c Contract) normalize(candidate any) (map[string]any, error) {
	fields, err := c.asObject(candidate)
	if err != nil {
		return nil, err
	}

	for _, f := range c.Fields {
		v, ok := fields[f.Name]
		if !ok || v == nil {
			if f.Required {
				return nil, c.fail(f.Name, f.Name+" is required.")
			}
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, c.fail(f.Name, f.Name+" must be a string.")
		}
		if f.MinLength > 0 && utf8.RuneCountInString(s) < f.MinLength {
			msg := f.Message
			if msg == "" {
				msg = fmt.Sprintf("%s must be at least %d characters long.", f.Name, f.MinLength)
			}
			return nil, c.fail(f.Name, msg)
		}
		if f.URL && s != "" && !isWebURL(s) {
			return nil, c.fail(f.Name, f.Name+" must be a valid URL.")
		}
	}
	return fields, nil
}

func (c Contract) asObject(candidate any) (map[string]any, error) {
	switch v := candidate.(type) {
	case nil:
		return nil, c.fail("", c.Name+": expected an object.")
	case map[string]any:
		return v, nil
	case string:
		if len(c.Fields) == 1 {
			return map[string]any{c.Fields[0].Name: v}, nil
		}
		return c.unmarshalObject([]byte(v))
	case json.RawMessage:
		return c.unmarshalObject(v)
	case []byte:
		return c.unmarshalObject(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, c.fail("", fmt.Sprintf("%s: %v", c.Name, err))
		}
		return c.unmarshalObject(b)
	}
}

func (c Contract) unmarshalObject(b []byte) (map[string]any, error) {
	if len(c.Fields) == 1 {
		var s string
		if json.Unmarshal(b, &s) == nil {
			return map[string]any{c.Fields[0].Name: s}, nil
		}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, c.fail("", c.Name+": expected a JSON object.")
	}
	return m, nil
}

func (c Contract) fail(field, msg string) *ValidationError {
	return &ValidationError{Contract: c.Name, Field: field, Message: msg}
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
