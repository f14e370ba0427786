package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/interview-master/backend/internal/middleware"
	"github.com/interview-master/backend/internal/model"
	"github.com/interview-master/backend/internal/proctor"
	"github.com/interview-master/backend/internal/response"
	"github.com/interview-master/backend/internal/service"
	"github.com/interview-master/backend/internal/validator"
)

// InterviewHandler handles the interview session REST surface.
type InterviewHandler struct {
	interviews *service.InterviewService
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviews *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Start godoc
// POST /api/v1/interviews
// Starts a proctored session for the chosen domain and difficulty.
func (h *InterviewHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartInterviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.interviews.Start(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": state})
}

// State godoc
// GET /api/v1/interviews/:session_id/state
// Returns the current question, remaining time and answered indexes.
func (h *InterviewHandler) State(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	state, err := h.interviews.State(sessionID, userID)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Next godoc
// POST /api/v1/interviews/:session_id/next
// Persists the displayed answer and advances. Advancing past the final
// question submits the session.
func (h *InterviewHandler) Next(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.interviews.Next(sessionID, userID, req.Answer)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Previous godoc
// POST /api/v1/interviews/:session_id/previous
// Persists the displayed answer and steps back one question.
func (h *InterviewHandler) Previous(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.interviews.Previous(sessionID, userID, req.Answer)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": state})
}

// Answer godoc
// POST /api/v1/interviews/:session_id/answer
// Records an answer for an explicit question index.
func (h *InterviewHandler) Answer(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.interviews.RecordAnswer(sessionID, userID, req.Index, req.Answer); err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Submit godoc
// POST /api/v1/interviews/:session_id/submit
// Finalizes the session voluntarily and returns the scored result.
func (h *InterviewHandler) Submit(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.interviews.Submit(sessionID, userID, req.Answer)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Result godoc
// GET /api/v1/interviews/:session_id/result
// Returns the outcome of a finalized session.
func (h *InterviewHandler) Result(c *gin.Context) {
	sessionID, userID, ok := h.sessionContext(c)
	if !ok {
		return
	}

	result, err := h.interviews.Result(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// History godoc
// GET /api/v1/interviews/history?page=&per_page=
// Returns the user's persisted results, newest first.
func (h *InterviewHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	records, total, err := h.interviews.History(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"interviews": records}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// sessionContext pulls the authenticated user and the session ID path
// param, failing the request on either.
func (h *InterviewHandler) sessionContext(c *gin.Context) (uuid.UUID, int, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return uuid.Nil, 0, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, 0, false
	}

	return sessionID, claims.UserID, true
}

func (h *InterviewHandler) failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActiveSessionExists):
		response.Fail(c, http.StatusConflict, response.ErrInterviewActive)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrInterviewFinished)
	case errors.Is(err, service.ErrSessionStillActive):
		response.Fail(c, http.StatusConflict, response.ErrInterviewRunning)
	case errors.Is(err, service.ErrUnknownDomain):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownDomain)
	case errors.Is(err, service.ErrUnknownDifficulty):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownDifficulty)
	case errors.Is(err, service.ErrPoolTooSmall):
		response.Fail(c, http.StatusConflict, response.ErrQuestionPoolSmall)
	case errors.Is(err, proctor.ErrNotAnOption):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerNotAnOption)
	case errors.Is(err, proctor.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
