package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
)

const resumePreviewLen = 280

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// ProfileResponse tells the client whether sessions started without a resume
// will be seeded from the stored CV.
type ProfileResponse struct {
	UserID        string    `json:"user_id"`
	FullName      string    `json:"full_name"`
	Skills        []string  `json:"skills"`
	HasResume     bool      `json:"has_resume"`
	ResumePreview string    `json:"resume_preview,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	cv := strings.TrimSpace(p.CVText)
	preview := cv
	if r := []rune(cv); len(r) > resumePreviewLen {
		preview = string(r[:resumePreviewLen]) + "..."
	}
	skills := []string(p.Skills)
	if skills == nil {
		skills = []string{}
	}
	return ProfileResponse{
		UserID:        p.UserID,
		FullName:      p.FullName,
		Skills:        skills,
		HasResume:     cv != "",
		ResumePreview: preview,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(p))
}
