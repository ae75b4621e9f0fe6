package client

import (
	"encoding/json"
	"testing"
)

func TestFormFields(t *testing.T) {
	type login struct {
		Email    *string `json:"email,omitempty"`
		Password *string `json:"password,omitempty"`
		Remember bool    `json:"remember"`
	}
	email := "eve.holt@reqres.in"
	got, err := formFields(login{Email: &email})
	if err != nil {
		t.Fatalf("formFields: %v", err)
	}
	if len(got) != 2 || got["email"] != email || got["remember"] != "false" {
		t.Fatalf("unexpected fields: %v", got)
	}

	if _, err := formFields([]int{1}); err == nil {
		t.Fatalf("non-object bodies should be rejected")
	}

	m, _ := formFields(map[string]any{"n": 12, "f": 1.5, "nil": nil, "nested": map[string]any{"a": 1}})
	if m["n"] != "12" || m["f"] != "1.5" || m["nested"] != `{"a":1}` {
		t.Fatalf("unexpected map fields: %v", m)
	}
	if _, ok := m["nil"]; ok {
		t.Fatalf("nil values should be dropped")
	}
}

func TestAnyToString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{42, "42"},
		{int64(7), "7"},
		{true, "true"},
		{json.Number("1e3"), "1e3"},
		{[]any{1, "a"}, `[1,"a"]`},
	}
	for _, tc := range cases {
		if got := anyToString(tc.in); got != tc.want {
			t.Fatalf("anyToString(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
