package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type StartSessionRequest struct {
	JobRole               string                `json:"job_role"`
	JobDescription        string                `json:"job_description"`
	Resume                string                `json:"resume"`
	Company               string                `json:"company"`
	InterviewStyle        models.InterviewStyle `json:"interview_style"`
	Difficulty            models.Difficulty     `json:"difficulty"`
	DurationMinutes       int                   `json:"duration_minutes"`
	UseTimeBasedInterview bool                  `json:"use_time_based_interview"`
	MaxQuestions          int                   `json:"max_questions"`
}

type StartSessionResponse struct {
	SessionID string              `json:"session_id"`
	Status    models.SessionState `json:"status"`
	CreatedAt string              `json:"created_at"`
}

type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type MessageResponse struct {
	InterviewerResponse models.InterviewerResponse  `json:"interviewer_response"`
	CoachFeedback       *models.CoachAnswerFeedback `json:"coach_feedback"`
	State               models.SessionState         `json:"state"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), models.InterviewConfig{
		JobRole:               req.JobRole,
		JobDescription:        req.JobDescription,
		Resume:                req.Resume,
		Company:               req.Company,
		Style:                 req.InterviewStyle,
		Difficulty:            req.Difficulty,
		DurationMinutes:       req.DurationMinutes,
		UseTimeBasedInterview: req.UseTimeBasedInterview,
		MaxQuestions:          req.MaxQuestions,
		UserID:                userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID: sess.SessionID,
		Status:    sess.State,
		CreatedAt: sess.StartedAt.Format(time.RFC3339),
	})
}

func (h *SessionHandler) Message(c *gin.Context) {
	const op = "SessionHandler.Message"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "text is required", err))
		return
	}

	sessionID := c.Param("session_id")
	if _, err := ownedSession(c.Request.Context(), h.svc, op, userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	res, err := h.svc.ProcessMessage(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		InterviewerResponse: res.InterviewerResponse,
		CoachFeedback:       res.CoachFeedback,
		State:               res.State,
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := ownedSession(c.Request.Context(), h.svc, "SessionHandler.Get", userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) End(c *gin.Context) {
	const op = "SessionHandler.End"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if _, err := ownedSession(c.Request.Context(), h.svc, op, userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	ended, err := h.svc.End(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ended)
}
