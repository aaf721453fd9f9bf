package sandbox

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Router)(nil)

// Router dispatches an execution to the backend configured for its language
type Router struct {
	routes   map[string]string
	backends map[string]secondary.CodeExecutor
	logger   primary.Logger
}

// NewRouter creates a router. routes maps language to backend name, backends maps
// backend name to its implementation.
func NewRouter(routes map[string]string, backends map[string]secondary.CodeExecutor, logger primary.Logger) *Router {
	r := &Router{
		routes:   make(map[string]string, len(routes)),
		backends: make(map[string]secondary.CodeExecutor, len(backends)),
		logger:   logger,
	}
	for lang, name := range routes {
		r.routes[strings.ToLower(lang)] = strings.ToLower(name)
	}
	for name, backend := range backends {
		if backend == nil {
			continue
		}
		r.backends[strings.ToLower(name)] = Guard(name, backend, logger)
	}
	return r
}

// Supports reports whether a language has a usable backend
func (r *Router) Supports(language domain.Language) bool {
	name, ok := r.routes[strings.ToLower(string(language))]
	if !ok {
		return false
	}
	_, ok = r.backends[name]
	return ok
}

func (r *Router) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	lang := strings.ToLower(string(req.Language))
	name, ok := r.routes[lang]
	if !ok {
		return domain.Failed(domain.ErrorKindConfiguration, fmt.Sprintf("Unsupported language: %s", req.Language), "", 0)
	}
	backend, ok := r.backends[name]
	if !ok {
		r.logger.Error("Sandbox backend not configured", "backend", name, "language", lang)
		return domain.Failed(domain.ErrorKindConfiguration, fmt.Sprintf("Sandbox backend %q is not configured for %s", name, lang), "", 0)
	}
	r.logger.Debug("Dispatching execution", "backend", name, "language", lang)
	return backend.Execute(ctx, req)
}
