package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infraai/backend/docs"
	"github.com/infraai/backend/internal/client"
	"github.com/infraai/backend/internal/model"
)

// Ping godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} model.PingResponse
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root godoc
// @Summary Service status
// @Tags health
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "Infrastructure AI backend is running",
	})
}

// OpenAPIDoc - swag 에 등록된 문서를 JSON 으로
func OpenAPIDoc(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
}

type backendStatus interface {
	Status() map[model.Domain]client.ConnectionStatus
}

// BackendStatusResponse - 도메인별 마지막 생존 확인 결과
type BackendStatusResponse struct {
	Status string                                   `json:"status"`
	Data   map[model.Domain]client.ConnectionStatus `json:"data"`
}

// BackendHandler - 도메인 백엔드 연결 상태
type BackendHandler struct {
	registry backendStatus
}

func NewBackendHandler(registry backendStatus) *BackendHandler {
	return &BackendHandler{registry: registry}
}

// Status godoc
// @Summary Backend connection status
// @Description Last liveness check per domain. Domains never contacted are absent.
// @Tags health
// @Produce json
// @Success 200 {object} handler.BackendStatusResponse
// @Router /api/v1/backends [get]
func (h *BackendHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, BackendStatusResponse{Status: "success", Data: h.registry.Status()})
}
