package main

import (
	"os"

	"github.com/hk1947/apicontract/internal/common"
)

// ExitHandler lets tests observe termination instead of exiting.
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

type DefaultExitHandler struct{}

func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs err with keyvals and exits with status 1.
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	args := append([]any{"error", err}, keyvals...)
	common.GetLogger().WithComponent("main").Error(msg, args...)
	h.Exit(1)
}

var exitHandler ExitHandler = &DefaultExitHandler{}
