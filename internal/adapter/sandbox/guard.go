// Package sandbox wires the sandbox backends together: every backend sits behind a
// recovery guard and the Router picks one per language.
package sandbox

import (
	"context"
	"fmt"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*guarded)(nil)

type guarded struct {
	name   string
	next   secondary.CodeExecutor
	logger primary.Logger
}

// Guard converts a panic inside a backend into a transport error result
func Guard(name string, next secondary.CodeExecutor, logger primary.Logger) secondary.CodeExecutor {
	return &guarded{name: name, next: next, logger: logger}
}

func (g *guarded) Execute(ctx context.Context, req domain.ExecutionRequest) (res domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Sandbox backend panicked", "backend", g.name, "language", req.Language, "panic", r)
			res = domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", r), "", 0)
		}
	}()
	return g.next.Execute(ctx, req)
}
