// Alertmanager 웹훅 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. Alertmanager 가 POST /webhook/alertmanager 로 알림 전송
//  2. JSON 페이로드를 AlertmanagerWebhook 구조체로 파싱
//  3. 개별 알림 로깅 후 service 레이어로 전달 (정책 평가 + 큐 적재)
//  4. 조치 실행은 기다리지 않고 바로 응답

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/model"
)

type alertService interface {
	ProcessWebhook(ctx context.Context, webhook model.AlertmanagerWebhook) (*model.ActionDescriptor, error)
}

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	alertService alertService
	log          *zap.Logger
}

// Alert 핸들러 객체 생성
func NewAlertHandler(alertService alertService, log *zap.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, log: log}
}

// Webhook godoc
// @Summary Receive an alert webhook
// @Description Evaluates remediation policies and enqueues the first matching action.
// @Tags alerts
// @Accept json
// @Produce json
// @Param request body model.AlertmanagerWebhook true "Alertmanager webhook payload"
// @Success 200 {object} model.AlertWebhookResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /webhook/alertmanager [post]
// @Router /api/v1/alerts [post]
func (h *AlertHandler) Webhook(c *gin.Context) {
	var webhook model.AlertmanagerWebhook

	// 1. JSON 페이로드 파싱
	if err := c.ShouldBindJSON(&webhook); err != nil {
		h.log.Warn("failed to parse webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload"})
		return
	}

	// 2. 웹훅 메타데이터 로깅
	h.log.Info("received alert webhook",
		zap.String("status", webhook.Status),
		zap.Int("alert_count", len(webhook.Alerts)),
		zap.String("receiver", webhook.Receiver),
	)
	for _, alert := range webhook.Alerts {
		h.log.Debug("alert",
			zap.String("alertname", alert.Labels["alertname"]), // 예: PodCrashLooping
			zap.String("severity", alert.Labels["severity"]),
			zap.String("namespace", alert.Labels["namespace"]),
			zap.String("starts_at", alert.StartsAt.Format(time.RFC3339)),
			zap.String("fingerprint", alert.Fingerprint),
		)
	}

	// 3. 정책 평가 및 큐 적재
	action, err := h.alertService.ProcessWebhook(c.Request.Context(), webhook)
	if err != nil {
		h.log.Error("failed to process webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	if action == nil {
		c.JSON(http.StatusOK, model.AlertWebhookResponse{Status: "no_action", AlertCount: len(webhook.Alerts)})
		return
	}
	c.JSON(http.StatusOK, model.AlertWebhookResponse{
		Status:     "accepted",
		Action:     action.Tool,
		AlertCount: len(webhook.Alerts),
	})
}
