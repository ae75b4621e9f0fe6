package model

import "fmt"

type Support struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// UserPage is the paginated envelope of GET /users.
type UserPage struct {
	Page       *int     `json:"page,omitempty"`
	PerPage    *int     `json:"per_page,omitempty"`
	Total      *int     `json:"total,omitempty"`
	TotalPages *int     `json:"total_pages,omitempty"`
	Data       []User   `json:"data,omitempty"`
	Support    *Support `json:"support,omitempty"`
}

// HasNextPage is true iff both page and total_pages are present and page < total_pages.
func (p UserPage) HasNextPage() bool {
	return p.Page != nil && p.TotalPages != nil && *p.Page < *p.TotalPages
}

func (p UserPage) UserCount() int { return len(p.Data) }

// User returns the i-th user, or false when out of range.
func (p UserPage) User(i int) (User, bool) {
	if i < 0 || i >= len(p.Data) {
		return User{}, false
	}
	return p.Data[i], true
}

func (p UserPage) FirstUser() (User, bool) { return p.User(0) }

// Validate checks the envelope invariants: at most per_page users, and
// page <= total_pages when the page has data.
func (p UserPage) Validate() error {
	if p.PerPage != nil && len(p.Data) > *p.PerPage {
		return fmt.Errorf("model: page holds %d users, per_page is %d", len(p.Data), *p.PerPage)
	}
	if len(p.Data) > 0 && p.Page != nil && p.TotalPages != nil && *p.Page > *p.TotalPages {
		return fmt.Errorf("model: page %d exceeds total_pages %d", *p.Page, *p.TotalPages)
	}
	return nil
}

// SingleUser is the envelope of GET /users/{id}.
type SingleUser struct {
	Data    User     `json:"data"`
	Support *Support `json:"support,omitempty"`
}
