package model

import "time"

const (
	JobStatusSuccess = "success"
	JobStatusError   = "error"
	JobStatusSkipped = "skipped"
)

// JobLog - 워커 실행 시도마다 하나씩 추가되는 감사 기록
type JobLog struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type JobLogListResponse struct {
	Status string   `json:"status"`
	Data   []JobLog `json:"data"`
}
