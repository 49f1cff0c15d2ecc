// Alertmanager 웹훅 페이로드 및 개별 알림 구조체를 정의
// handler(수신), service(정책 평가) 레이어에서 공통으로 사용

package model

import "time"

const (
	AlertStatusFiring   = "firing"
	AlertStatusResolved = "resolved"
)

// AlertmanagerWebhook - Alertmanager 웹훅 페이로드
// 여러 개의 알림이 하나의 그룹으로 묶여서 전송될 수 있음
type AlertmanagerWebhook struct {
	Version  string `json:"version"`
	GroupKey string `json:"groupKey"`

	// 전체 그룹의 상태 (firing | resolved)
	// status 조건은 개별 알림이 아니라 이 값과 비교
	Status   string `json:"status"`
	Receiver string `json:"receiver"`

	GroupLabels       map[string]string `json:"groupLabels"`
	CommonLabels      map[string]string `json:"commonLabels"`
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`

	// 개별 알림 리스트 (페이로드 순서대로 평가)
	Alerts []Alert `json:"alerts"`
}

// Alert - 개별 알림
type Alert struct {
	Status string `json:"status"`

	// 예: alertname, severity, namespace, pod_name
	Labels map[string]string `json:"labels"`

	// 예: summary, description, runbook_url
	Annotations map[string]string `json:"annotations"`

	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	GeneratorURL string    `json:"generatorURL"`

	// Labels 조합으로 생성되는 해시값, 멱등성 키 생성에 사용
	Fingerprint string `json:"fingerprint"`
}
