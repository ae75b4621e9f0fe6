// Package model holds the wire records of the demo API. Optional fields are
// pointers: nil means absent and is omitted on encode, while a pointer to ""
// is sent as an empty string. Unknown wire fields are ignored on decode.
package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// ID accepts a JSON number or a numeric string; the create endpoint echoes
// ids as strings.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) >= 2 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// encoding/json adds the field path to type errors
		kind := "number"
		if len(b) > 0 && b[0] == '"' {
			kind = "string"
		}
		return &json.UnmarshalTypeError{Value: kind + " " + string(b), Type: reflect.TypeOf(*id)}
	}
	*id = ID(n)
	return nil
}

func (id ID) Int() int { return int(id) }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// User is shared by the read shape (id, email, names, avatar) and the
// mutation shape (name, job, timestamps).
type User struct {
	ID        *ID     `json:"id,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Name      *string `json:"name,omitempty"`
	Job       *string `json:"job,omitempty"`
	CreatedAt *string `json:"createdAt,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

// NewUser builds the create/update request body.
func NewUser(name, job string) User {
	return User{Name: String(name), Job: String(job)}
}

// NewProfile builds a read-shape user.
func NewProfile(email, first, last string) User {
	return User{Email: String(email), FirstName: String(first), LastName: String(last)}
}

// FullName joins first and last name. It is empty unless both are present.
func (u User) FullName() string {
	if u.FirstName == nil || u.LastName == nil {
		return ""
	}
	return *u.FirstName + " " + *u.LastName
}

// DisplayName prefers FullName and falls back to Name.
func (u User) DisplayName() string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.GetName()
}

func (u User) GetID() int {
	if u.ID == nil {
		return 0
	}
	return u.ID.Int()
}

func (u User) GetEmail() string     { return deref(u.Email) }
func (u User) GetFirstName() string { return deref(u.FirstName) }
func (u User) GetLastName() string  { return deref(u.LastName) }
func (u User) GetAvatar() string    { return deref(u.Avatar) }
func (u User) GetName() string      { return deref(u.Name) }
func (u User) GetJob() string       { return deref(u.Job) }
func (u User) GetCreatedAt() string { return deref(u.CreatedAt) }
func (u User) GetUpdatedAt() string { return deref(u.UpdatedAt) }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// NewID returns a pointer to an ID.
func NewID(n int) *ID {
	id := ID(n)
	return &id
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
