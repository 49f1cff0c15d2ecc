package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// ToolSpec - 백엔드가 제공하는 도구 하나의 선언
type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema struct {
		Required []string `json:"required"`
	} `json:"input_schema"`
}

// Capabilities - 도구 이름 -> 선언
type Capabilities map[string]ToolSpec

func toolSpec(name, description string, required ...string) ToolSpec {
	spec := ToolSpec{Name: name, Description: description}
	spec.InputSchema.Required = required
	return spec
}

func DefaultPrometheusCapabilities() Capabilities {
	return Capabilities{
		"health_check":        toolSpec("health_check", "Health check"),
		"execute_query":       toolSpec("execute_query", "Execute PromQL query", "query"),
		"execute_range_query": toolSpec("execute_range_query", "Execute range query", "query", "start", "end", "step"),
		"list_metrics":        toolSpec("list_metrics", "List metrics"),
		"get_metric_metadata": toolSpec("get_metric_metadata", "Get metric metadata", "metric"),
		"get_targets":         toolSpec("get_targets", "Get scrape targets"),
	}
}

func DefaultGrafanaCapabilities() Capabilities {
	return Capabilities{
		"list_dashboards":  toolSpec("list_dashboards", "List dashboards"),
		"get_dashboard":    toolSpec("get_dashboard", "Get dashboard by UID", "uid"),
		"list_datasources": toolSpec("list_datasources", "List datasources"),
	}
}

// LoadCapabilities - {"mcp_tools": {...}} 형식의 설정 파일 로드
func LoadCapabilities(path string) (Capabilities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capability config: %w", err)
	}
	var file struct {
		Tools Capabilities `json:"mcp_tools"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse capability config: %w", err)
	}
	if len(file.Tools) == 0 {
		return nil, fmt.Errorf("capability config %s declares no tools", path)
	}
	for name, spec := range file.Tools {
		if spec.Name == "" {
			spec.Name = name
			file.Tools[name] = spec
		}
	}
	return file.Tools, nil
}

func (c Capabilities) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names - 정렬된 도구 이름 목록
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteTool - 선언에 없는 도구나 필수 파라미터 누락은 호출 없이 error 맵 반환
func (c Capabilities) ExecuteTool(ctx context.Context, client *MCPClient, name string, params map[string]any) map[string]any {
	spec, ok := c[name]
	if !ok {
		return map[string]any{
			"status":          "error",
			"error":           fmt.Sprintf("Tool '%s' not found in MCP configuration", name),
			"available_tools": c.Names(),
		}
	}

	var missing []string
	for _, param := range spec.InputSchema.Required {
		if _, ok := params[param]; !ok {
			missing = append(missing, param)
		}
	}
	if len(missing) > 0 {
		return map[string]any{
			"status":              "error",
			"error":               fmt.Sprintf("Missing required parameters: %v", missing),
			"tool":                name,
			"required_parameters": spec.InputSchema.Required,
		}
	}

	return client.Call(ctx, name, params)
}
