// 백엔드 결과 포맷팅
//
// 결과 형태에 따라:
//  1. 평범한 에러 문자열 -> 그대로
//  2. title/uid 를 가진 객체 배열 -> 번호 매긴 대시보드 목록
//  3. JSON-RPC 봉투의 result.resultType 이 vector/matrix -> 메트릭 목록
//  4. 그 외 -> LLM 포맷팅, 실패하면 목록 추출, 그것도 안 되면 일반 완료 메시지

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/infraai/backend/internal/model"
)

func (e *Engine) format(ctx context.Context, result string) string {
	trimmed := strings.TrimSpace(result)
	if isPlainError(trimmed) {
		return trimmed
	}

	var parsed any
	isJSON := json.Unmarshal([]byte(trimmed), &parsed) == nil

	if isJSON {
		if text, ok := dashboardList(parsed); ok {
			return text
		}
		if text, ok := metricListing(parsed); ok {
			return text
		}
	}

	if e.completer != nil {
		formatted, err := e.completer.Complete(ctx, fmt.Sprintf(formattingPrompt, trimmed))
		if err == nil && strings.TrimSpace(formatted) != "" {
			return strings.TrimSpace(formatted)
		}
		if err != nil {
			e.log.Warn("result formatting failed", zap.Error(err))
		}
	}

	if isJSON {
		if text, ok := genericList(parsed); ok {
			return text
		}
	}
	return fmt.Sprintf("Operation completed successfully. Retrieved %d characters of data.", len(trimmed))
}

func isPlainError(s string) bool {
	return strings.HasPrefix(s, "Error") || strings.HasPrefix(s, "Command not supported")
}

// unwrapContent - MCP content 봉투(result.content[0].text)에 JSON 이 들어 있으면 디코딩
func unwrapContent(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return v
	}
	result, ok := obj["result"].(map[string]any)
	if !ok {
		return v
	}
	content, ok := result["content"].([]any)
	if !ok || len(content) == 0 {
		return v
	}
	first, ok := content[0].(map[string]any)
	if !ok {
		return v
	}
	text, ok := first["text"].(string)
	if !ok {
		return v
	}
	var inner any
	if err := json.Unmarshal([]byte(text), &inner); err != nil {
		return v
	}
	return inner
}

func dashboardList(v any) (string, bool) {
	items, ok := unwrapContent(v).([]any)
	if !ok || len(items) == 0 {
		return "", false
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return "", false
		}
		_, hasTitle := obj["title"]
		_, hasUID := obj["uid"]
		if !hasTitle || !hasUID {
			return "", false
		}
		folder := model.StringValue(obj["folderTitle"])
		if folder == "" {
			folder = "General"
		}
		lines = append(lines, fmt.Sprintf("%2d. %s (UID: %s) - Folder: %s", i+1, model.StringValue(obj["title"]), model.StringValue(obj["uid"]), folder))
	}
	return fmt.Sprintf("Found %d dashboards:\n%s", len(items), strings.Join(lines, "\n")), true
}

func metricListing(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	result, ok := obj["result"].(map[string]any)
	if !ok {
		return "", false
	}
	resultType := model.StringValue(result["resultType"])
	series, _ := result["result"].([]any)

	switch resultType {
	case "vector":
		lines := make([]string, 0, len(series))
		for i, item := range series {
			sample, _ := item.(map[string]any)
			value, _ := sample["value"].([]any)
			if len(value) < 2 {
				continue
			}
			lines = append(lines, fmt.Sprintf("%2d. %s: %s", i+1, labelSet(sample["metric"]), model.StringValue(value[1])))
		}
		text := fmt.Sprintf("Prometheus query returned %d results", len(series))
		if len(lines) > 0 {
			text += ":\n" + strings.Join(lines, "\n")
		}
		return text, true
	case "matrix":
		lines := make([]string, 0, len(series))
		for i, item := range series {
			s, _ := item.(map[string]any)
			values, _ := s["values"].([]any)
			lines = append(lines, fmt.Sprintf("%2d. %s: %d samples", i+1, labelSet(s["metric"]), len(values)))
		}
		text := fmt.Sprintf("Prometheus range query returned %d series", len(series))
		if len(lines) > 0 {
			text += ":\n" + strings.Join(lines, "\n")
		}
		return text, true
	}
	return "", false
}

// labelSet - {k="v", ...} 키 정렬
func labelSet(v any) string {
	labels, _ := v.(map[string]any)
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, model.StringValue(labels[k])))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// genericList - 목록 형태 페이로드를 번호 매긴 목록으로
func genericList(v any) (string, bool) {
	inner := unwrapContent(v)
	if obj, ok := inner.(map[string]any); ok {
		for _, key := range []string{"items", "assets", "result", "data"} {
			if list, ok := obj[key].([]any); ok {
				inner = list
				break
			}
		}
	}
	items, ok := inner.([]any)
	if !ok {
		return "", false
	}
	if len(items) == 0 {
		return "No items found.", true
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, itemLabel(item)))
	}
	return fmt.Sprintf("Found %d items:\n%s", len(items), strings.Join(lines, "\n")), true
}

func itemLabel(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return model.StringValue(item)
	}
	for _, key := range []string{"title", "name", "uid", "ip", "id"} {
		if s := model.StringValue(obj[key]); s != "" {
			return s
		}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprint(obj)
	}
	return string(data)
}
