package normalizer

import (
	"fmt"

	"gitlab.com/fcv-grader.net/internal/domain"
)

// Judge0 status ids
const (
	Judge0InQueue             = 1
	Judge0Processing          = 2
	Judge0Accepted            = 3
	Judge0WrongAnswer         = 4
	Judge0TimeLimitExceeded   = 5
	Judge0CompilationError    = 6
	Judge0RuntimeErrorSIGSEGV = 7
	Judge0RuntimeErrorOther   = 12
	Judge0InternalError       = 13
	Judge0ExecFormatError     = 14
)

// StatusClass is a backend status mapped onto the canonical taxonomy
type StatusClass struct {
	Pending  bool
	Accepted bool
	Kind     domain.ErrorKind
}

// Terminal reports whether no further transition will happen
func (c StatusClass) Terminal() bool {
	return !c.Pending
}

// Judge0Status maps a Judge0 status id onto the canonical taxonomy
func Judge0Status(id int) StatusClass {
	switch {
	case id == Judge0InQueue || id == Judge0Processing:
		return StatusClass{Pending: true}
	case id == Judge0Accepted:
		return StatusClass{Accepted: true}
	case id == Judge0TimeLimitExceeded:
		return StatusClass{Kind: domain.ErrorKindWallTimeExceeded}
	case id == Judge0CompilationError:
		return StatusClass{Kind: domain.ErrorKindCompile}
	case id == Judge0WrongAnswer,
		id >= Judge0RuntimeErrorSIGSEGV && id <= Judge0RuntimeErrorOther,
		id == Judge0ExecFormatError:
		return StatusClass{Kind: domain.ErrorKindRuntime}
	case id == Judge0InternalError:
		return StatusClass{Kind: domain.ErrorKindTransport}
	default:
		return StatusClass{Kind: domain.ErrorKindUnknownStatus}
	}
}

// ExitMessage picks the diagnostic for a non-zero exit
func ExitMessage(stderr string, code int) string {
	if msg := FirstNonEmpty(stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("Exit code: %d", code)
}

// TimeoutMessage is the diagnostic of a program killed by its wall clock limit
func TimeoutMessage(limitSeconds int) string {
	return fmt.Sprintf("Execution timeout (>%ds)", limitSeconds)
}
