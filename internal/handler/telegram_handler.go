package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-app/civitas-api/internal/service"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/response"
)

// TelegramHandler exposes messaging account linking.
type TelegramHandler struct {
	telegram *service.TelegramService
}

// NewTelegramHandler constructs handler.
func NewTelegramHandler(telegram *service.TelegramService) *TelegramHandler {
	return &TelegramHandler{telegram: telegram}
}

type confirmLinkRequest struct {
	Code   string `json:"code" binding:"required"`
	ChatID int64  `json:"chat_id" binding:"required"`
}

// GenerateLinkCode godoc
// @Summary Generate a one-time code to link a Telegram account
// @Tags Telegram
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /telegram/link-code [post]
func (h *TelegramHandler) GenerateLinkCode(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	code, expiresAt, err := h.telegram.GenerateLinkCode(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"code": code, "expires_at": expiresAt}, nil)
}

// ConfirmLink godoc
// @Summary Consume a link code and bind a chat to its user
// @Tags Telegram
// @Accept json
// @Produce json
// @Param payload body confirmLinkRequest true "Link confirmation"
// @Success 204
// @Router /telegram/confirm [post]
func (h *TelegramHandler) ConfirmLink(c *gin.Context) {
	var req confirmLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.telegram.ConfirmLink(c.Request.Context(), req.Code, req.ChatID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
