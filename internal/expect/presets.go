package expect

import (
	"net/http"
	"time"

	"github.com/hk1947/apicontract/internal/constants"
)

// Status expects an exact status code.
func Status(code int) Set { return Set{Status: &code} }

func OK() Set        { return Merge(Status(http.StatusOK), JSONResponse()) }
func Created() Set   { return Merge(Status(http.StatusCreated), JSONResponse()) }
func NoContent() Set { return Status(http.StatusNoContent) }

func BadRequest() Set   { return Status(http.StatusBadRequest) }
func Unauthorized() Set { return Status(http.StatusUnauthorized) }
func Forbidden() Set    { return Status(http.StatusForbidden) }
func NotFound() Set     { return Status(http.StatusNotFound) }
func Conflict() Set     { return Status(http.StatusConflict) }
func ServerError() Set  { return Status(http.StatusInternalServerError) }

func JSONResponse() Set { return Set{ContentType: JSON} }
func XMLResponse() Set  { return Set{ContentType: XML} }

// Within fails when the observed round trip exceeds d.
func Within(d time.Duration) Set { return Set{MaxLatency: d} }

// WithinDefault uses the 5s default budget.
func WithinDefault() Set { return Within(constants.DefaultMaxLatency) }

func OKWithinDefault() Set      { return Merge(OK(), WithinDefault()) }
func CreatedWithinDefault() Set { return Merge(Created(), WithinDefault()) }

func HasHeader(name string) Set {
	return Set{Headers: []HeaderRule{{Name: name}}}
}

func HeaderEquals(name, value string) Set {
	return Set{Headers: []HeaderRule{{Name: name, Value: &value}}}
}

// HasField requires each path to exist and be non-null.
func HasField(paths ...string) Set {
	return Set{BodyPaths: append([]string(nil), paths...)}
}

func HasBody() Set { return Set{RequireBody: true} }

// Merge combines sets. Scalar clauses from later sets win; header and body
// path requirements accumulate.
func Merge(sets ...Set) Set {
	var out Set
	for _, s := range sets {
		if s.Status != nil {
			code := *s.Status
			out.Status = &code
		}
		if s.ContentType != AnyContent {
			out.ContentType = s.ContentType
		}
		if s.MaxLatency > 0 {
			out.MaxLatency = s.MaxLatency
		}
		out.Headers = append(out.Headers, s.Headers...)
		out.BodyPaths = append(out.BodyPaths, s.BodyPaths...)
		out.RequireBody = out.RequireBody || s.RequireBody
	}
	return out
}

// And is Merge(s, others...).
func (s Set) And(others ...Set) Set {
	return Merge(append([]Set{s}, others...)...)
}
