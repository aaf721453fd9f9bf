package submissions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/services/submission"
	"gitlab.com/fcv-grader.net/internal/domain"
	"gitlab.com/fcv-grader.net/internal/handlers/response"
	"gitlab.com/fcv-grader.net/internal/handlers/validation"
	"gitlab.com/fcv-grader.net/internal/static/errs"
)

// SubmissionHandler handles assignment and submission API requests
type SubmissionHandler struct {
	submissionService submission.ISubmissionService
	validator         *validation.Validator
	logger            primary.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService submission.ISubmissionService, logger primary.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		validator:         validation.New(),
		logger:            logger,
	}
}

// RegisterRoutes registers the API routes for SubmissionHandler
func (h *SubmissionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/assignments/{assignmentId}", h.GetAssignment).Methods("GET")
	router.HandleFunc("/api/assignments/{assignmentId}/stats", h.GetStats).Methods("GET")
	router.HandleFunc("/api/assignments/{assignmentId}/submit-code", h.SubmitCode).Methods("POST")
	router.HandleFunc("/api/assignments/{assignmentId}/submit-code/batch", h.SubmitCodeBatch).Methods("POST")
	router.HandleFunc("/api/assignments/{assignmentId}/submit-sql", h.SubmitSQL).Methods("POST")
	router.HandleFunc("/api/submissions/{submissionId}/verdict", h.GetVerdict).Methods("GET")
}

// GetAssignment handles assignment retrieval requests. Hidden test cases are returned blanked.
func (h *SubmissionHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	assignment, testCases, err := h.submissionService.GetAssignment(r.Context(), assignmentID)
	if err != nil {
		h.writeServiceError(w, "Failed to get assignment", err)
		return
	}

	resp := AssignmentResponse{Assignment: assignment, TestCases: make([]domain.TestCase, len(testCases))}
	for i, tc := range testCases {
		resp.TestCases[i] = tc.Redacted()
	}
	response.WriteSuccess(w, resp)
}

// GetStats handles assignment statistics requests
func (h *SubmissionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	stats, err := h.submissionService.GetStats(r.Context(), assignmentID)
	if err != nil {
		h.writeServiceError(w, "Failed to get stats", err)
		return
	}
	response.WriteSuccess(w, stats)
}

// SubmitCode handles code submission requests
func (h *SubmissionHandler) SubmitCode(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	var req SubmitCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	graded, err := h.submissionService.SubmitCode(r.Context(), assignmentID, req.UserID, req.Code)
	if err != nil {
		h.writeServiceError(w, "Failed to grade submission", err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, newSubmissionResponse(graded))
}

// SubmitCodeBatch handles requests grading many programs against one assignment
func (h *SubmissionHandler) SubmitCodeBatch(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	var req SubmitCodeBatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	entries := make([]submission.CodeEntry, len(req.Submissions))
	for i, s := range req.Submissions {
		entries[i] = submission.CodeEntry{UserID: s.UserID, Code: s.Code}
	}

	graded, err := h.submissionService.SubmitCodeBatch(r.Context(), assignmentID, entries)
	if err != nil {
		h.writeServiceError(w, "Failed to grade submissions", err)
		return
	}

	resp := make([]SubmissionResponse, len(graded))
	for i, g := range graded {
		resp[i] = newSubmissionResponse(g)
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

// SubmitSQL handles query submission requests
func (h *SubmissionHandler) SubmitSQL(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := h.assignmentID(w, r)
	if !ok {
		return
	}

	var req SubmitSQLRequest
	if !h.decode(w, r, &req) {
		return
	}

	graded, err := h.submissionService.SubmitSQL(r.Context(), assignmentID, req.UserID, req.SQLQuery)
	if err != nil {
		h.writeServiceError(w, "Failed to grade submission", err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, newSubmissionResponse(graded))
}

// GetVerdict handles cached verdict retrieval requests
func (h *SubmissionHandler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["submissionId"]
	submissionID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Error("Invalid submission ID", "id", idStr)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid submission ID", StatusCode: http.StatusBadRequest})
		return
	}

	verdict, err := h.submissionService.GetVerdict(r.Context(), submissionID)
	if err != nil {
		h.writeServiceError(w, "Failed to get verdict", err)
		return
	}
	response.WriteSuccess(w, verdict.Redacted())
}

func newSubmissionResponse(g *submission.Graded) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID: g.Submission.ID,
		Status:       g.Submission.Status,
		Score:        g.Submission.Score,
		Result:       g.Verdict.Redacted(),
	}
}

func (h *SubmissionHandler) assignmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["assignmentId"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid assignment ID", "id", idStr)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid assignment ID", StatusCode: http.StatusBadRequest})
		return 0, false
	}
	return id, true
}

func (h *SubmissionHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return false
	}
	if problems := h.validator.Struct(req); problems != nil {
		response.WriteError(w, response.ErrorMessage{
			Message:    "Invalid request",
			StatusCode: http.StatusBadRequest,
			Errors:     problems,
		})
		return false
	}
	return true
}

func (h *SubmissionHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, errs.AssignmentNotFound):
		response.WriteError(w, response.ErrorMessage{Message: "Assignment not found", StatusCode: http.StatusNotFound})
	case errors.Is(err, errs.SubmissionNotFound):
		response.WriteError(w, response.ErrorMessage{Message: "Submission not found", StatusCode: http.StatusNotFound})
	case errors.Is(err, errs.WrongProblemType):
		response.WriteError(w, response.ErrorMessage{Message: "This endpoint is not for this assignment type", StatusCode: http.StatusBadRequest})
	case errors.Is(err, errs.LanguageMissing):
		response.WriteError(w, response.ErrorMessage{Message: "Assignment language not specified", StatusCode: http.StatusBadRequest})
	default:
		h.logger.Error(msg, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: msg, StatusCode: http.StatusInternalServerError})
	}
}
