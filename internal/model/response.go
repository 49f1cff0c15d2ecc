package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AlertWebhookResponse - accepted 이면 Action 에 큐에 적재된 tool 이름
type AlertWebhookResponse struct {
	Status     string `json:"status"`
	Action     string `json:"action,omitempty"`
	AlertCount int    `json:"alertCount"`
}
