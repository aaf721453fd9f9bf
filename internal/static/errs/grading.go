package errs

import "errors"

var InternalError = errors.New("internal error")

var (
	AssignmentNotFound = errors.New("assignment not found")
	WrongProblemType   = errors.New("assignment has a different problem type")
	LanguageMissing    = errors.New("assignment has no language")
	SubmissionNotFound = errors.New("submission not found")
)
