package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cast"
)

// CallOption adjusts a single call.
type CallOption func(*call)

type call struct {
	pathParams map[string]string
	query      map[string]string
	headers    map[string]string
	files      []fileField
}

type fileField struct {
	param string
	name  string
	r     io.Reader
}

func newCall() *call {
	return &call{pathParams: map[string]string{}, query: map[string]string{}, headers: map[string]string{}}
}

// PathParam fills a {name} placeholder in the endpoint.
func PathParam(name string, value any) CallOption {
	return func(c *call) { c.pathParams[name] = anyToString(value) }
}

func PathParams(m map[string]any) CallOption {
	return func(c *call) {
		for k, v := range m {
			c.pathParams[k] = anyToString(v)
		}
	}
}

func QueryParam(name string, value any) CallOption {
	return func(c *call) { c.query[name] = anyToString(value) }
}

func QueryParams(m map[string]any) CallOption {
	return func(c *call) {
		for k, v := range m {
			c.query[k] = anyToString(v)
		}
	}
}

func Header(name, value string) CallOption {
	return func(c *call) { c.headers[http.CanonicalHeaderKey(name)] = value }
}

func Headers(m map[string]string) CallOption {
	return func(c *call) {
		for k, v := range m {
			c.headers[http.CanonicalHeaderKey(k)] = v
		}
	}
}

// File attaches a multipart file part. It switches the call to multipart.
func File(param, filename string, r io.Reader) CallOption {
	return func(c *call) { c.files = append(c.files, fileField{param: param, name: filename, r: r}) }
}

// formFields flattens a map or struct into string fields. Structs go
// through their JSON tags so wire names match the JSON encoding; absent
// (nil) fields are dropped.
func formFields(body any) (map[string]string, error) {
	out := map[string]string{}
	switch b := body.(type) {
	case nil:
		return out, nil
	case map[string]string:
		for k, v := range b {
			out[k] = v
		}
		return out, nil
	case map[string]any:
		for k, v := range b {
			if v != nil {
				out[k] = anyToString(v)
			}
		}
		return out, nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode form body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("form body must be an object: %w", err)
	}
	for k, v := range m {
		if v != nil {
			out[k] = anyToString(v)
		}
	}
	return out, nil
}

// anyToString renders scalars plainly and composites as JSON.
func anyToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bytes.Trim(b, `"`))
}
