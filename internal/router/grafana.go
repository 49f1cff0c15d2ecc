package router

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/infraai/backend/internal/client"
	"github.com/infraai/backend/internal/metrics"
	"github.com/infraai/backend/internal/model"
)

// 영숫자로만 이루어진 이름은 UID 로 취급
var dashboardUIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type dashboardSummary struct {
	UID         string `json:"uid"`
	Title       string `json:"title"`
	FolderTitle string `json:"folderTitle"`
}

func (r *Router) registerGrafana() {
	g := model.DomainGrafana
	r.add(g, "list", r.grafanaList)
	r.add(g, "get", r.grafanaGet)
}

func (r *Router) grafanaList(ctx context.Context, cmd model.Command, _ map[string]any) string {
	var tool string
	switch strings.ToLower(cmd.Resource) {
	case "", "dashboard", "dashboards":
		tool = "list_dashboards"
	case "datasource", "datasources":
		tool = "list_datasources"
	default:
		return fmt.Sprintf("Error: Unsupported Grafana resource '%s' for list. Available resources: dashboards, datasources", cmd.Resource)
	}

	c, err := r.registry.Acquire(ctx, model.DomainGrafana)
	if err != nil {
		return r.acquireFailed(model.DomainGrafana, err)
	}
	return r.grafanaResult(r.grafanaCall(ctx, c, tool, nil))
}

// grafanaGet - UID 직접 조회 또는 제목 부분 일치(대소문자 무시)로 UID 를 찾은 뒤 조회
func (r *Router) grafanaGet(ctx context.Context, cmd model.Command, _ map[string]any) string {
	ref := firstNonEmpty(cmd.Name, cmd.String("uid"), cmd.String("title"))
	if ref == "" {
		return "Error: Missing required parameter 'name' for Grafana get"
	}

	c, err := r.registry.Acquire(ctx, model.DomainGrafana)
	if err != nil {
		return r.acquireFailed(model.DomainGrafana, err)
	}

	uid := ref
	if !dashboardUIDPattern.MatchString(ref) {
		listed := r.grafanaCall(ctx, c, "list_dashboards", nil)
		if IsServerUnavailable(listed) {
			return r.render(model.DomainGrafana, listed)
		}
		text, ok := mcpText(listed)
		if !ok {
			return r.render(model.DomainGrafana, listed)
		}
		var dashboards []dashboardSummary
		if err := json.Unmarshal([]byte(text), &dashboards); err != nil {
			return fmt.Sprintf("Error executing command: failed to parse dashboard list: %v", err)
		}
		match, found := findDashboard(dashboards, ref)
		if !found {
			return fmt.Sprintf("Error: No dashboard found with title containing '%s'", ref)
		}
		uid = match.UID
	}

	return r.grafanaResult(r.grafanaCall(ctx, c, "get_dashboard", map[string]any{"uid": uid}))
}

func (r *Router) grafanaCall(ctx context.Context, c *client.MCPClient, tool string, args map[string]any) map[string]any {
	if !r.grafanaTools.Has(tool) {
		return map[string]any{
			"status":          "error",
			"error":           fmt.Sprintf("Tool '%s' not found in MCP configuration", tool),
			"available_tools": r.grafanaTools.Names(),
		}
	}
	return c.CallTool(ctx, tool, args)
}

// grafanaResult - MCP content 봉투(result.content[0].text)를 벗겨서 반환
func (r *Router) grafanaResult(res map[string]any) string {
	if IsServerUnavailable(res) {
		return r.render(model.DomainGrafana, res)
	}
	if text, ok := mcpText(res); ok {
		metrics.BackendCalls.WithLabelValues(string(model.DomainGrafana), "ok").Inc()
		return text
	}
	return r.render(model.DomainGrafana, res)
}

func findDashboard(dashboards []dashboardSummary, name string) (dashboardSummary, bool) {
	needle := strings.ToLower(name)
	for _, d := range dashboards {
		if strings.Contains(strings.ToLower(d.Title), needle) {
			return d, true
		}
	}
	return dashboardSummary{}, false
}

// mcpText - result.content[0].text 추출
func mcpText(res map[string]any) (string, bool) {
	result, ok := res["result"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := result["content"].([]any)
	if !ok || len(content) == 0 {
		return "", false
	}
	first, ok := content[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := first["text"].(string)
	return text, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
