package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/grading"
	"gitlab.com/fcv-grader.net/internal/domain"
	"gitlab.com/fcv-grader.net/internal/static/errs"
)

var _ ISubmissionService = (*SubmissionService)(nil)

// SubmissionService implements the ISubmissionService interface
type SubmissionService struct {
	assignmentRepo secondary.AssignmentRepository
	submissionRepo secondary.SubmissionRepository
	verdictCache   secondary.VerdictCache
	codingGrader   grading.ICodingGrader
	sqlGrader      grading.ISQLGrader
	batch          *grading.Batch
	logger         primary.Logger
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	assignmentRepo secondary.AssignmentRepository,
	submissionRepo secondary.SubmissionRepository,
	verdictCache secondary.VerdictCache,
	codingGrader grading.ICodingGrader,
	sqlGrader grading.ISQLGrader,
	batch *grading.Batch,
	logger primary.Logger,
) *SubmissionService {
	return &SubmissionService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		verdictCache:   verdictCache,
		codingGrader:   codingGrader,
		sqlGrader:      sqlGrader,
		batch:          batch,
		logger:         logger,
	}
}

func (s *SubmissionService) GetAssignment(ctx context.Context, assignmentID int64) (*domain.Assignment, []*domain.TestCase, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}

	testCases, err := s.assignmentRepo.GetTestCases(ctx, assignmentID, assignment.TestCaseKind())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	return assignment, testCases, nil
}

func (s *SubmissionService) SubmitCode(ctx context.Context, assignmentID, userID int64, code string) (*Graded, error) {
	assignment, language, testCases, err := s.codingAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Grading code submission",
		"assignment_id", assignmentID,
		"user_id", userID,
		"language", language,
		"test_cases", len(testCases))

	verdict := s.codingGrader.GradeCoding(ctx, language, code, testCases)
	return s.record(ctx, assignment.ID, userID, code, verdict)
}

func (s *SubmissionService) SubmitCodeBatch(ctx context.Context, assignmentID int64, entries []CodeEntry) ([]*Graded, error) {
	assignment, language, testCases, err := s.codingAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	jobs := make([]grading.CodingJob, len(entries))
	for i, entry := range entries {
		jobs[i] = grading.CodingJob{Language: language, Source: entry.Code, TestCases: testCases}
	}

	s.logger.Info("Grading batch submission", "assignment_id", assignmentID, "submissions", len(entries))
	verdicts := s.batch.GradeCoding(ctx, jobs)

	graded := make([]*Graded, len(entries))
	for i, entry := range entries {
		g, err := s.record(ctx, assignment.ID, entry.UserID, entry.Code, verdicts[i])
		if err != nil {
			return nil, err
		}
		graded[i] = g
	}
	return graded, nil
}

func (s *SubmissionService) SubmitSQL(ctx context.Context, assignmentID, userID int64, query string) (*Graded, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.ProblemType != domain.ProblemTypeSQL {
		return nil, fmt.Errorf("assignment %d is %s: %w", assignmentID, assignment.ProblemType, errs.WrongProblemType)
	}

	testCases, err := s.assignmentRepo.GetTestCases(ctx, assignmentID, domain.TestCaseKindSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to get test cases: %w", err)
	}

	schema := ""
	if assignment.SQLSchema != nil {
		schema = *assignment.SQLSchema
	}

	s.logger.Info("Grading SQL submission",
		"assignment_id", assignmentID,
		"user_id", userID,
		"test_cases", len(testCases))

	verdict := s.sqlGrader.GradeSQL(ctx, schema, query, testCases)
	return s.record(ctx, assignment.ID, userID, query, verdict)
}

func (s *SubmissionService) GetStats(ctx context.Context, assignmentID int64) (*domain.AssignmentStats, error) {
	if _, err := s.loadAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	stats, err := s.submissionRepo.GetStats(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

func (s *SubmissionService) GetVerdict(ctx context.Context, submissionID uuid.UUID) (*domain.GradingVerdict, error) {
	verdict, err := s.verdictCache.GetVerdict(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}
	if verdict == nil {
		return nil, fmt.Errorf("submission %s: %w", submissionID, errs.SubmissionNotFound)
	}
	return verdict, nil
}

func (s *SubmissionService) loadAssignment(ctx context.Context, assignmentID int64) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, errs.AssignmentNotFound)
	}
	return assignment, nil
}

func (s *SubmissionService) codingAssignment(ctx context.Context, assignmentID int64) (*domain.Assignment, domain.Language, []*domain.TestCase, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, "", nil, err
	}
	if assignment.ProblemType != domain.ProblemTypeCoding {
		return nil, "", nil, fmt.Errorf("assignment %d is %s: %w", assignmentID, assignment.ProblemType, errs.WrongProblemType)
	}
	if assignment.Language == nil || *assignment.Language == "" {
		return nil, "", nil, fmt.Errorf("assignment %d: %w", assignmentID, errs.LanguageMissing)
	}

	testCases, err := s.assignmentRepo.GetTestCases(ctx, assignmentID, domain.TestCaseKindCoding)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to get test cases: %w", err)
	}
	return assignment, domain.Language(*assignment.Language), testCases, nil
}

// record persists the summary of a verdict. A cache failure only loses the quick lookup.
func (s *SubmissionService) record(ctx context.Context, assignmentID, userID int64, code string, verdict *domain.GradingVerdict) (*Graded, error) {
	sub := domain.NewSubmission(assignmentID, userID, code, verdict)
	if err := s.submissionRepo.SaveSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	if err := s.verdictCache.SaveVerdict(ctx, sub.ID, verdict); err != nil {
		s.logger.Warn("Failed to cache verdict", "submission_id", sub.ID, "error", err)
	}

	s.logger.Info("Submission graded",
		"submission_id", sub.ID,
		"status", sub.Status,
		"passed", verdict.PassedTests,
		"total", verdict.TotalTests)
	return &Graded{Submission: sub, Verdict: verdict}, nil
}
