package secondary

import (
	"context"

	"gitlab.com/fcv-grader.net/internal/domain"
)

type CodeExecutor interface {
	// Execute runs one program against one stdin. It never returns an error:
	// every failure is reported inside the result.
	Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult
}
