package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers - 라우터에 등록할 핸들러 묶음
type Handlers struct {
	Alert     *AlertHandler
	Policy    *PolicyHandler
	Chat      *ChatHandler
	Command   *CommandHandler
	Inventory *InventoryHandler
	Backend   *BackendHandler
}

// Register - 전체 HTTP 경로 등록
func Register(r *gin.Engine, h Handlers) {
	r.GET("/ping", Ping)
	r.GET("/", Root)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/openapi.json", OpenAPIDoc)

	r.POST("/webhook/alertmanager", h.Alert.Webhook)

	api := r.Group("/api/v1")
	api.POST("/alerts", h.Alert.Webhook)

	api.GET("/policies", h.Policy.ListPolicies)
	api.POST("/policies", h.Policy.CreatePolicy)
	api.GET("/policies/:id", h.Policy.GetPolicy)
	api.DELETE("/policies/:id", h.Policy.DeletePolicy)

	api.GET("/jobs", h.Inventory.ListJobs)
	api.POST("/discover", h.Inventory.Discover)
	api.GET("/topology", h.Inventory.Topology)

	api.POST("/chat", h.Chat.Chat)
	api.GET("/chat/history/:session_id", h.Chat.History)

	api.POST("/commands", h.Command.Execute)
	api.GET("/backends", h.Backend.Status)
}
