// Package schema validates response bodies against named JSON Schema
// documents. Documents are read from an fs.FS, compiled on first use and
// cached per name.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/constants"
	"github.com/hk1947/apicontract/internal/resources"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaNotFound  = errors.New("schema: document not found")
	ErrSchemaViolation = errors.New("schema: body does not conform")
)

// NotFoundError reports a schema name with no readable document.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: %q not found: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("schema: %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Is(target error) bool { return target == ErrSchemaNotFound }

// Violation is one failed assertion. Path is a JSON pointer into the body,
// "/" for the root.
type Violation struct {
	Path    string
	Keyword string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Path, v.Message, v.Keyword)
}

type ViolationError struct {
	Schema     string
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("schema: body violates %q: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ViolationError) Is(target error) bool { return target == ErrSchemaViolation }

// Response is the part of an HTTP response the validator reads.
type Response interface {
	Body() []byte
}

// Validator owns a compiled-schema cache. It is safe for concurrent use.
type Validator struct {
	fsys   fs.FS
	dir    string
	logger *common.Logger

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// New reads documents named <dir>/<name>.json from fsys.
func New(fsys fs.FS, dir string) *Validator {
	return &Validator{
		fsys:     fsys,
		dir:      dir,
		logger:   common.GetLogger().WithComponent("schema"),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Default uses the embedded schema documents.
func Default() *Validator {
	return New(resources.FS, constants.SchemaDir)
}

func (v *Validator) file(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	if v.dir == "" || v.dir == "." {
		return name
	}
	return path.Join(v.dir, name)
}

// Exists reports whether a document for name can be read.
func (v *Validator) Exists(name string) bool {
	_, err := fs.Stat(v.fsys, v.file(name))
	return err == nil
}

// Names lists the available documents without their extension.
func (v *Validator) Names() ([]string, error) {
	dir := v.dir
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(v.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("schema: list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func (v *Validator) compile(name string) (*jsonschema.Schema, error) {
	file := v.file(name)

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.compiled[file]; ok {
		return s, nil
	}

	raw, err := fs.ReadFile(v.fsys, file)
	if err != nil {
		return nil, &NotFoundError{Name: name, Err: err}
	}

	url := "mem:///" + file
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema: load %q: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema: compile %q: %w", name, err)
	}
	v.compiled[file] = s
	v.logger.WithSchema(name).Debug("compiled schema", "file", file)
	return s, nil
}

// Validate checks body against the named document. A body that is not JSON
// is reported as a violation at the root.
func (v *Validator) Validate(body []byte, name string) error {
	s, err := v.compile(name)
	if err != nil {
		return err
	}

	doc, err := decode(body)
	if err != nil {
		return &ViolationError{Schema: name, Violations: []Violation{{
			Path:    "/",
			Keyword: "json",
			Message: err.Error(),
		}}}
	}

	err = s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("schema: validate %q: %w", name, err)
	}
	out := &ViolationError{Schema: name, Violations: flatten(ve)}
	v.logger.WithSchema(name).Debug("schema violations", "count", len(out.Violations))
	return out
}

// ValidateResponse validates the body of resp.
func (v *Validator) ValidateResponse(resp Response, name string) error {
	if resp == nil {
		return &ViolationError{Schema: name, Violations: []Violation{{
			Path: "/", Keyword: "json", Message: "no response",
		}}}
	}
	return v.Validate(resp.Body(), name)
}

func decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: trailing data")
	}
	return doc, nil
}

// flatten keeps the leaf causes, which carry the specific failures.
func flatten(root *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				Path:    pointer(e.InstanceLocation),
				Keyword: keyword(e.KeywordLocation),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}

func keyword(loc string) string {
	loc = strings.TrimRight(loc, "/")
	if i := strings.LastIndex(loc, "/"); i >= 0 {
		return loc[i+1:]
	}
	return loc
}
