package grading

import (
	"context"
	"time"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ ICodingGrader = (*CodingGrader)(nil)

type CodingGrader struct {
	executor secondary.CodeExecutor
	timeout  time.Duration
	logger   primary.Logger
}

func NewCodingGrader(executor secondary.CodeExecutor, cfg *config.GradingConfig, logger primary.Logger) *CodingGrader {
	return &CodingGrader{
		executor: executor,
		timeout:  cfg.PerTestTimeout,
		logger:   logger,
	}
}

func (g *CodingGrader) GradeCoding(ctx context.Context, language domain.Language, source string, testCases []*domain.TestCase) *domain.GradingVerdict {
	verdict := domain.NewGradingVerdict(domain.TestCaseKindCoding, len(testCases))

	for i, tc := range testCases {
		res := g.executor.Execute(ctx, domain.NewExecutionRequest(language, source, tc.Input, g.timeout))

		outcome := domain.CodingOutcome{
			TestID:         i + 1,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			ActualOutput:   res.Stdout,
			Hidden:         tc.Hidden,
		}
		if res.Succeeded {
			outcome.Passed = normalizer.OutputsMatch(res.Stdout, tc.ExpectedOutput)
		} else {
			msg := res.ErrorMessage
			outcome.Error = &msg
			verdict.RecordCodeError(res.Kind, msg)
		}

		g.logger.Debug("Graded test case",
			"test_id", outcome.TestID,
			"passed", outcome.Passed,
			"error_kind", res.Kind,
			"elapsed", res.ElapsedSeconds)
		verdict.AddCodingOutcome(outcome)
	}

	return verdict.Finish()
}
