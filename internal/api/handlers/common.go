package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func toAPIError(err error) (int, APIError) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		return status, APIError{Code: ae.Code, Message: ae.Message}
	}
	return status, APIError{Code: utils.CodeInternal, Message: http.StatusText(status)}
}

func writeError(c *gin.Context, err error) {
	status, body := toAPIError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// ownedSession loads a session and checks it belongs to userID.
func ownedSession(ctx context.Context, svc services.SessionService, op, userID, sessionID string) (*models.Session, error) {
	sess, err := svc.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Config.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return sess, nil
}
