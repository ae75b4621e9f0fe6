// Package expect evaluates declarative response expectations. A Set is a
// conjunction of clauses; Check evaluates every clause and reports all
// violations together.
package expect

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response is what a Set is checked against. *client.Response satisfies it.
type Response interface {
	StatusCode() int
	Header() http.Header
	Body() []byte
	Elapsed() time.Duration
}

// ContentType is a media type family. The zero value matches anything.
type ContentType string

const (
	AnyContent ContentType = ""
	JSON       ContentType = "json"
	XML        ContentType = "xml"
	HTML       ContentType = "html"
	Text       ContentType = "text"
)

// Matches reports whether a Content-Type header value belongs to the family.
func (c ContentType) Matches(header string) bool {
	if c == AnyContent {
		return true
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	}
	switch c {
	case JSON:
		return mt == "application/json" || mt == "text/json" || strings.HasSuffix(mt, "+json") ||
			mt == "application/javascript" || mt == "text/javascript"
	case XML:
		return mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml")
	case HTML:
		return mt == "text/html" || mt == "application/xhtml+xml"
	case Text:
		return mt == "text/plain"
	default:
		return mt == string(c)
	}
}

// HeaderRule requires a header. A nil Value only checks presence.
type HeaderRule struct {
	Name  string
	Value *string
}

// Set is a conjunction of expectations. Zero-valued clauses are not checked.
type Set struct {
	Status      *int
	ContentType ContentType
	MaxLatency  time.Duration
	Headers     []HeaderRule
	BodyPaths   []string
	RequireBody bool
}

// Clause names used in Violation.Clause.
const (
	ClauseStatus      = "status"
	ClauseContentType = "content-type"
	ClauseLatency     = "latency"
	ClauseHeader      = "header"
	ClauseBody        = "body"
	ClauseBodyPath    = "body-path"
)

// Violation is one unmet clause.
type Violation struct {
	Clause   string
	Target   string
	Expected string
	Actual   string
}

func (v Violation) String() string {
	if v.Target != "" {
		return fmt.Sprintf("%s %s: expected %s, got %s", v.Clause, v.Target, v.Expected, v.Actual)
	}
	return fmt.Sprintf("%s: expected %s, got %s", v.Clause, v.Expected, v.Actual)
}

var ErrMismatch = errors.New("expect: response mismatch")

// MismatchError lists every violated clause, sorted by clause then target.
type MismatchError struct {
	Violations []Violation
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("expect: %d violation(s): %s", len(e.Violations), strings.Join(parts, "; "))
}

func (e *MismatchError) Is(target error) bool { return target == ErrMismatch }

// Expect returns a reusable checker for set.
func Expect(set Set) func(Response) error {
	return set.Check
}

// Check evaluates every clause of s against r. It returns nil or a *MismatchError.
func (s Set) Check(r Response) error {
	if r == nil {
		return &MismatchError{Violations: []Violation{{Clause: ClauseStatus, Expected: "a response", Actual: "nil"}}}
	}
	var vs []Violation

	if s.Status != nil && r.StatusCode() != *s.Status {
		vs = append(vs, Violation{
			Clause:   ClauseStatus,
			Expected: fmt.Sprint(*s.Status),
			Actual:   fmt.Sprint(r.StatusCode()),
		})
	}

	if s.ContentType != AnyContent {
		got := r.Header().Get("Content-Type")
		if !s.ContentType.Matches(got) {
			vs = append(vs, Violation{Clause: ClauseContentType, Expected: string(s.ContentType), Actual: quoteOrNone(got)})
		}
	}

	if s.MaxLatency > 0 && r.Elapsed() > s.MaxLatency {
		vs = append(vs, Violation{
			Clause:   ClauseLatency,
			Expected: "<= " + s.MaxLatency.String(),
			Actual:   r.Elapsed().String(),
		})
	}

	for _, h := range s.Headers {
		vals, ok := r.Header()[http.CanonicalHeaderKey(h.Name)]
		switch {
		case !ok || len(vals) == 0:
			exp := "present"
			if h.Value != nil {
				exp = fmt.Sprintf("%q", *h.Value)
			}
			vs = append(vs, Violation{Clause: ClauseHeader, Target: h.Name, Expected: exp, Actual: "absent"})
		case h.Value != nil && !containsValue(vals, *h.Value):
			vs = append(vs, Violation{Clause: ClauseHeader, Target: h.Name, Expected: fmt.Sprintf("%q", *h.Value), Actual: fmt.Sprintf("%q", strings.Join(vals, ", "))})
		}
	}

	body := r.Body()
	if s.RequireBody && len(strings.TrimSpace(string(body))) == 0 {
		vs = append(vs, Violation{Clause: ClauseBody, Expected: "non-empty body", Actual: "empty"})
	}

	if len(s.BodyPaths) > 0 {
		valid := gjson.ValidBytes(body)
		for _, p := range s.BodyPaths {
			if !valid {
				vs = append(vs, Violation{Clause: ClauseBodyPath, Target: p, Expected: "present", Actual: "body is not valid JSON"})
				continue
			}
			res := Lookup(body, p)
			if !res.Exists() {
				vs = append(vs, Violation{Clause: ClauseBodyPath, Target: p, Expected: "present", Actual: "absent"})
			} else if res.Type == gjson.Null {
				vs = append(vs, Violation{Clause: ClauseBodyPath, Target: p, Expected: "present", Actual: "null"})
			}
		}
	}

	if len(vs) == 0 {
		return nil
	}
	return &MismatchError{Violations: normalize(vs)}
}

func containsValue(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

func quoteOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return fmt.Sprintf("%q", s)
}

// normalize sorts violations and drops exact duplicates so the report does
// not depend on the order clauses were listed in.
func normalize(vs []Violation) []Violation {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Clause != vs[j].Clause {
			return vs[i].Clause < vs[j].Clause
		}
		if vs[i].Target != vs[j].Target {
			return vs[i].Target < vs[j].Target
		}
		return vs[i].Expected < vs[j].Expected
	})
	out := vs[:0]
	for i, v := range vs {
		if i > 0 && v == vs[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Lookup reads a value with gjson syntax ("data.0.id") or an RFC 6901 JSON
// pointer ("/data/0/id"). Pointers are resolved segment by segment, so "/"
// addresses the member named "".
func Lookup(body []byte, p string) gjson.Result {
	if !strings.HasPrefix(p, "/") {
		return gjson.GetBytes(body, p)
	}
	res := gjson.ParseBytes(body)
	for _, seg := range strings.Split(p[1:], "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		res = member(res, seg)
		if !res.Exists() {
			return gjson.Result{}
		}
	}
	return res
}

func member(res gjson.Result, seg string) gjson.Result {
	switch {
	case res.IsObject():
		var out gjson.Result
		res.ForEach(func(k, v gjson.Result) bool {
			if k.String() == seg {
				out = v
				return false
			}
			return true
		})
		return out
	case res.IsArray():
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || strconv.Itoa(i) != seg {
			return gjson.Result{}
		}
		items := res.Array()
		if i >= len(items) {
			return gjson.Result{}
		}
		return items[i]
	default:
		return gjson.Result{}
	}
}
