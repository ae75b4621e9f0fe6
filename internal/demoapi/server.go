// Package demoapi is an in-process double of the reqres demo API. It serves
// the same routes, status codes and error bodies so scenarios can run
// offline, and backs the CLI's mock command.
package demoapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hk1947/apicontract/internal/common"
	"github.com/hk1947/apicontract/internal/constants"
)

// Options configures a Server. Zero values give an open server mounted at /api.
type Options struct {
	// BasePath prefixes every route. Defaults to /api.
	BasePath string
	// APIKey, when set, is required on every request in APIKeyHeader.
	APIKey       string
	APIKeyHeader string
	// JWTSecret, when set, makes /login mint HS256 tokens and requires a
	// valid bearer token on mutating /users routes.
	JWTSecret string
	// MaxDelay caps the ?delay= parameter. Defaults to 10s.
	MaxDelay time.Duration
	Logger   *common.Logger
	// Now is the clock used for createdAt/updatedAt.
	Now func() time.Time
}

type Server struct {
	opts   Options
	engine *gin.Engine
	logger *common.Logger
	nextID atomic.Int64
}

var modeOnce sync.Once

func New(opts Options) *Server {
	modeOnce.Do(func() { gin.SetMode(gin.ReleaseMode) })

	opts.BasePath = normalizeBase(opts.BasePath)
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = constants.DefaultAPIKeyHeader
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}

	s := &Server{opts: opts, logger: logger.WithComponent("demoapi")}
	s.nextID.Store(int64(len(fixtures)) + 100)

	e := gin.New()
	e.Use(gin.Recovery(), s.accessLog())
	e.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{}) })

	api := e.Group(opts.BasePath)
	if opts.APIKey != "" {
		api.Use(s.requireAPIKey())
	}
	api.GET("/users", s.listUsers)
	api.GET("/users/:id", s.getUser)
	api.POST("/login", s.login)
	api.POST("/register", s.register)

	mut := api.Group("")
	if opts.JWTSecret != "" {
		mut.Use(s.requireBearer())
	}
	mut.POST("/users", s.createUser)
	mut.PUT("/users/:id", s.updateUser)
	mut.PATCH("/users/:id", s.updateUser)
	mut.DELETE("/users/:id", s.deleteUser)

	s.engine = e
	return s
}

// BasePath is the prefix the routes are mounted under.
func (s *Server) BasePath() string { return s.opts.BasePath }

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("mock api listening", "addr", addr, "base", s.opts.BasePath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithRequest(c.Request.Method, c.Request.URL.Path).Debug("served",
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func (s *Server) timestamp() string {
	return s.opts.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func normalizeBase(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/api"
	}
	if p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}
