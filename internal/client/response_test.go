package client

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hk1947/apicontract/internal/model"
)

func rawResponse(body string) *Response {
	return &Response{
		status:  200,
		text:    "200 OK",
		header:  http.Header{"Content-Type": []string{"application/json"}},
		body:    []byte(body),
		elapsed: 10 * time.Millisecond,
	}
}

const pageBody = `{"page":1,"per_page":6,"data":[{"id":1,"email":"george.bluth@reqres.in"},{"id":2,"email":"janet.weaver@reqres.in"}]}`

func TestResponse_Path(t *testing.T) {
	r := rawResponse(pageBody)
	if got := r.Path("data.1.email").String(); got != "janet.weaver@reqres.in" {
		t.Fatalf("gjson path: %q", got)
	}
	if got := r.Path("/data/0/id").Int(); got != 1 {
		t.Fatalf("json pointer path: %d", got)
	}
	if r.ContentType() != "application/json" || r.String() != pageBody {
		t.Fatalf("accessors")
	}
}

func TestResponse_Search(t *testing.T) {
	r := rawResponse(pageBody)
	v, err := r.Search("data[?id > `1`].email | [0]")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if v != "janet.weaver@reqres.in" {
		t.Fatalf("unexpected search result: %v", v)
	}
}

func TestResponse_As(t *testing.T) {
	type user struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}
	r := rawResponse(pageBody)
	users, err := AsAt[[]user](r, "data")
	if err != nil {
		t.Fatalf("AsAt: %v", err)
	}
	if len(users) != 2 || users[1].ID != 2 {
		t.Fatalf("unexpected users: %+v", users)
	}
	first, err := AsAt[user](r, "/data/0")
	if err != nil || first.Email != "george.bluth@reqres.in" {
		t.Fatalf("AsAt pointer: %+v %v", first, err)
	}
}

func TestResponse_DecodeErrors(t *testing.T) {
	type typed struct {
		Page string `json:"page"`
	}
	_, err := As[typed](rawResponse(pageBody))
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, ErrDecode) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Field != "page" {
		t.Fatalf("offending field should be reported: %+v", de)
	}

	_, err = AsAt[[]typed](rawResponse(`{"data":[{"page":1}]}`), "data")
	if !errors.As(err, &de) || de.Field != "data.page" {
		t.Fatalf("nested field should be prefixed with the path: %v", err)
	}

	_, err = As[typed](rawResponse(`{"page":`))
	if !errors.As(err, &de) || de.Offset == 0 {
		t.Fatalf("syntax error should carry an offset: %v", err)
	}

	_, err = As[typed](rawResponse(""))
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("empty body: %v", err)
	}

	_, err = AsAt[typed](rawResponse(`{}`), "data.0")
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("missing path: %v", err)
	}
}

func TestResponse_DecodeModelIDNamesField(t *testing.T) {
	_, err := As[model.SingleUser](rawResponse(`{"data":{"id":"abc","email":"x@reqres.in"}}`))
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, ErrDecode) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Field != "data.id" {
		t.Fatalf("offending field should be data.id, got %q (%v)", de.Field, err)
	}

	u, err := AsAt[model.User](rawResponse(`{"data":{"id":"7"}}`), "data")
	if err != nil || u.GetID() != 7 {
		t.Fatalf("numeric string id: %+v %v", u, err)
	}
}
