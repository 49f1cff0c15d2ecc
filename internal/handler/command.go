package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infraai/backend/internal/model"
)

type commandRouter interface {
	Execute(ctx context.Context, cmd model.Command) string
}

// CommandHandler - 구조화된 명령을 Router 에 바로 전달
type CommandHandler struct {
	router commandRouter
}

func NewCommandHandler(router commandRouter) *CommandHandler {
	return &CommandHandler{router: router}
}

// Execute godoc
// @Summary Execute a structured infrastructure command
// @Description Unsupported or failed commands are reported in the result text, not as HTTP errors.
// @Tags commands
// @Accept json
// @Produce json
// @Param request body model.Command true "Command descriptor"
// @Success 200 {object} model.CommandResult
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/commands [post]
func (h *CommandHandler) Execute(c *gin.Context) {
	var cmd model.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	if cmd.Domain == "" || cmd.Action == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "domain and action are required"})
		return
	}
	c.JSON(http.StatusOK, model.CommandResult{Result: h.router.Execute(c.Request.Context(), cmd)})
}
