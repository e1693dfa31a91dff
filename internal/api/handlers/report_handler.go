package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/storage"
)

type ReportHandler struct {
	svc    services.ReportService
	signer storage.Signer // optional
	logger *logrus.Logger
}

func NewReportHandler(svc services.ReportService, signer storage.Signer, l *logrus.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, signer: signer, logger: l}
}

type ReportResponse struct {
	models.CoachingReport
	TranscriptLink string `json:"transcript_link,omitempty"`
}

func (h *ReportHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	out, err := h.svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	if out == nil {
		out = []models.CoachingReport{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (h *ReportHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rep, err := h.svc.GetMine(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := ReportResponse{CoachingReport: *rep}
	if h.signer != nil && rep.TranscriptURL != "" {
		link, err := h.signer.SignedGetURL(c.Request.Context(), rep.TranscriptURL, 15*time.Minute)
		if err != nil && h.logger != nil {
			h.logger.WithError(err).WithField("session_id", rep.SessionID).Warn("transcript link signing failed")
		}
		resp.TranscriptLink = link
	}

	c.JSON(http.StatusOK, resp)
}
