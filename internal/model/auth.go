package model

// LoginRequest allows partial construction so missing-field paths can be exercised.
// It is also the register request body.
type LoginRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func NewLogin(email, password string) LoginRequest {
	return LoginRequest{Email: String(email), Password: String(password)}
}

// LoginResponse carries either a token or an error. Both may be absent in a
// malformed response.
type LoginResponse struct {
	Token *string `json:"token,omitempty"`
	Error *string `json:"error,omitempty"`
}

func (r LoginResponse) IsSuccess() bool { return r.Token != nil && *r.Token != "" }

func (r LoginResponse) IsFailed() bool { return r.Error != nil && *r.Error != "" }

func (r LoginResponse) GetToken() string { return deref(r.Token) }

func (r LoginResponse) GetError() string { return deref(r.Error) }

type RegisterResponse struct {
	ID    *ID     `json:"id,omitempty"`
	Token *string `json:"token,omitempty"`
	Error *string `json:"error,omitempty"`
}

func (r RegisterResponse) IsSuccess() bool {
	return r.ID != nil && r.Token != nil && *r.Token != ""
}

func (r RegisterResponse) IsFailed() bool { return r.Error != nil && *r.Error != "" }

func (r RegisterResponse) GetError() string { return deref(r.Error) }
