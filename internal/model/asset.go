package model

import "time"

// Asset - 네트워크 스캔으로 발견된 호스트
type Asset struct {
	IP       string    `json:"ip"`
	Hostname string    `json:"hostname"`
	Type     string    `json:"type"`
	Services []string  `json:"services"`
	LastSeen time.Time `json:"last_seen"`
}

// ScanResult - 스캔 요약 (Router 결과 문자열로도 직렬화)
type ScanResult struct {
	Status  string  `json:"status"`
	Subnet  string  `json:"subnet"`
	HostsUp int     `json:"hosts_up"`
	Assets  []Asset `json:"assets"`
}

type DiscoverRequest struct {
	Subnet string `json:"subnet"`
}

type TopologyResponse struct {
	Status string  `json:"status"`
	Data   []Asset `json:"data"`
}
