package router

import (
	"strings"

	"github.com/infraai/backend/internal/model"
)

var unavailableMarkers = []string{
	"connection",
	"server not accessible",
	"failed to initialize",
	"all connection attempts failed",
	"http",
	"404",
	"503",
}

// IsServerUnavailable - status=error 이고 에러 문구에 접속 실패 표식이 있으면 true
func IsServerUnavailable(res map[string]any) bool {
	if model.StringValue(res["status"]) != "error" {
		return false
	}
	msg := strings.ToLower(model.StringValue(res["error"]))
	for _, marker := range unavailableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
