package model

import "time"

const DefaultPolicyPriority = 100

// Condition - 정책 조건 (네 가지 형태 중 하나)
//
//	{"label": "alertname", "value": "HighCPU"}
//	{"labels": {"alertname": "PodCrashLoop", "severity": "critical"}}
//	{"status": "firing"}
//	{"expression": "..."}  항상 false
type Condition map[string]any

// Policy - 알림 조건과 조치 템플릿을 연결하는 자동복구 규칙
// Priority 값이 작을수록 먼저 평가
type Policy struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Condition Condition      `json:"condition"`
	Action    map[string]any `json:"action"`
	Priority  int            `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
}

type PolicyRequest struct {
	Name      string         `json:"name"`
	Condition Condition      `json:"condition"`
	Action    map[string]any `json:"action"`
	Priority  *int           `json:"priority,omitempty"`
}

type PolicyListResponse struct {
	Status string   `json:"status"`
	Data   []Policy `json:"data"`
}

type PolicyResponse struct {
	Status string  `json:"status"`
	Data   *Policy `json:"data"`
}

type PolicyMutationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
