package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/infraai/backend/internal/model"
)

type chatService interface {
	Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
	History(ctx context.Context, sessionID string) ([]model.ChatHistoryEntry, error)
}

type ChatHandler struct {
	svc chatService
}

func NewChatHandler(svc chatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat godoc
// @Summary Chat with the infrastructure assistant
// @Description chatMode "chat" answers in plain text, "chat-with-infra" may run infrastructure commands.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body model.ChatRequest true "Chat request"
// @Success 200 {object} model.ChatResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.svc.Chat(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Get chat history for a session
// @Tags chat
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} model.ChatHistoryResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/chat/history/{session_id} [get]
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "session_id is required"})
		return
	}
	history, err := h.svc.History(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	if history == nil {
		history = []model.ChatHistoryEntry{}
	}
	c.JSON(http.StatusOK, model.ChatHistoryResponse{Status: "success", Data: history})
}
