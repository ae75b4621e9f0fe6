package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hk1947/apicontract/internal/expect"
	"github.com/jmespath/go-jmespath"
	"github.com/tidwall/gjson"
)

// Response is a detached snapshot of an HTTP response. It is safe to read
// from several goroutines.
type Response struct {
	status  int
	text    string
	header  http.Header
	body    []byte
	elapsed time.Duration
	method  string
	url     string
}

func newResponse(r *resty.Response, method, url string) *Response {
	out := &Response{
		status:  r.StatusCode(),
		text:    r.Status(),
		header:  r.Header().Clone(),
		body:    r.Body(),
		elapsed: r.Time(),
		method:  method,
		url:     url,
	}
	if out.header == nil {
		out.header = http.Header{}
	}
	if r.Request != nil && r.Request.RawRequest != nil && r.Request.RawRequest.URL != nil {
		out.url = r.Request.RawRequest.URL.String()
	}
	return out
}

func (r *Response) StatusCode() int        { return r.status }
func (r *Response) Status() string         { return r.text }
func (r *Response) Header() http.Header    { return r.header }
func (r *Response) Body() []byte           { return r.body }
func (r *Response) String() string         { return string(r.body) }
func (r *Response) Elapsed() time.Duration { return r.elapsed }
func (r *Response) Method() string         { return r.method }
func (r *Response) URL() string            { return r.url }

func (r *Response) ContentType() string { return r.header.Get("Content-Type") }

// Path reads a value with gjson syntax or a JSON pointer.
func (r *Response) Path(path string) gjson.Result {
	return expect.Lookup(r.body, path)
}

// Search evaluates a JMESPath expression against the decoded body.
func (r *Response) Search(expr string) (any, error) {
	var data any
	if err := r.Decode(&data); err != nil {
		return nil, err
	}
	return jmespath.Search(expr, data)
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return decodeJSON(r.body, "", v)
}

// DecodePath unmarshals the value at path into v.
func (r *Response) DecodePath(path string, v any) error {
	res := r.Path(path)
	if !res.Exists() {
		return &DecodeError{Field: path, Err: ErrPathNotFound}
	}
	return decodeJSON([]byte(res.Raw), path, v)
}

// Expect checks the response against set.
func (r *Response) Expect(set expect.Set) error {
	if r == nil {
		return set.Check(nil)
	}
	return set.Check(r)
}

// As decodes the body into a new T.
func As[T any](r *Response) (T, error) {
	var v T
	err := r.Decode(&v)
	return v, err
}

// AsAt decodes the value at path into a new T.
func AsAt[T any](r *Response, path string) (T, error) {
	var v T
	err := r.DecodePath(path, &v)
	return v, err
}

func decodeJSON(data []byte, prefix string, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &DecodeError{Field: prefix, Err: ErrEmptyBody}
	}
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return &DecodeError{Field: joinField(prefix, typeErr.Field), Offset: typeErr.Offset, Err: err}
	case errors.As(err, &syntaxErr):
		return &DecodeError{Field: prefix, Offset: syntaxErr.Offset, Err: err}
	default:
		return &DecodeError{Field: prefix, Err: err}
	}
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}
