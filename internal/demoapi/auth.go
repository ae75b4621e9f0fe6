package demoapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hk1947/apicontract/internal/auth"
	"github.com/hk1947/apicontract/internal/constants"
)

// StaticToken is returned by /login and /register when no JWT secret is set.
const StaticToken = "QpwL5tke4Pnpja7X4"

// Error bodies of the live service.
const (
	ErrMissingIdentity  = "Missing email or username"
	ErrMissingPassword  = "Missing password"
	ErrUserNotFound     = "user not found"
	ErrOnlyDefinedUsers = "Note: Only defined users succeed registration"
	ErrMissingAPIKey    = "Missing API key"
	ErrInvalidAPIKey    = "Invalid API key"
	ErrMissingBearer    = "Missing bearer token"
	ErrInvalidBearer    = "Invalid bearer token"
)

// ClaimsKey holds the verified JWT claims in the gin context.
const ClaimsKey = "jwt_claims"

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (cr credentials) identity() string {
	if cr.Email != "" {
		return cr.Email
	}
	return cr.Username
}

// bindCredentials applies the service's field checks in order and writes
// the 400 response on failure.
func bindCredentials(c *gin.Context) (credentials, bool) {
	var cr credentials
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return cr, false
	}
	cr.Email, _ = body["email"].(string)
	cr.Username, _ = body["username"].(string)
	cr.Password, _ = body["password"].(string)

	switch {
	case strings.TrimSpace(cr.identity()) == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingIdentity})
		return cr, false
	case cr.Password == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingPassword})
		return cr, false
	}
	return cr, true
}

func (s *Server) token(subject string) (string, error) {
	if s.opts.JWTSecret == "" {
		return StaticToken, nil
	}
	return auth.JWTConfig{Secret: s.opts.JWTSecret, Subject: subject, Issuer: "demoapi"}.Issue()
}

func (s *Server) login(c *gin.Context) {
	cr, ok := bindCredentials(c)
	if !ok {
		return
	}
	u, found := findByEmail(cr.identity())
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrUserNotFound})
		return
	}
	tok, err := s.token(u.GetEmail())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

func (s *Server) register(c *gin.Context) {
	cr, ok := bindCredentials(c)
	if !ok {
		return
	}
	u, found := findByEmail(cr.identity())
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrOnlyDefinedUsers})
		return
	}
	tok, err := s.token(u.GetEmail())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.GetID(), "token": tok})
}

func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(s.opts.APIKeyHeader)
		switch {
		case got == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingAPIKey})
		case got != s.opts.APIKey:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrInvalidAPIKey})
		default:
			c.Next()
		}
	}
}

func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader(constants.HeaderAuthorization)
		if h == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingBearer})
			return
		}
		claims, err := auth.VerifyJWT(h, auth.VerifyOptions{Secret: []byte(s.opts.JWTSecret), Issuer: "demoapi"})
		if err != nil {
			s.logger.Debug("bearer rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidBearer})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
