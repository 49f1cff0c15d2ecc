// 생성된 응답에서 구조화된 호출 추출
//
//  1. 응답 전체가 JSON 객체인지 엄격하게 검사
//  2. 실패하면 이름 붙은 추출기를 순서대로 시도
//     fenced_json -> fenced -> tool_calls -> domain_object
//
// 추출기는 시작 위치만 찾고 객체는 json.Decoder 로 괄호 균형을 맞춰 읽음
// 어떤 단계에서든 실패는 "명령 아님" 으로 취급

package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/infraai/backend/internal/model"
)

type extractor struct {
	name string
	find func(text string) (map[string]any, bool)
}

var (
	fencedJSONRe = regexp.MustCompile("```\\s*json\\s*")
	fencedRe     = regexp.MustCompile("```\\s*")
	toolCallsRe  = regexp.MustCompile(`"tool_calls"\s*:\s*\[`)
	domainRe     = regexp.MustCompile(`"domain"\s*:\s*"(?i:kubernetes|prometheus|grafana|vmware|network)"`)
)

var extractors = []extractor{
	{name: "fenced_json", find: func(text string) (map[string]any, bool) {
		return objectAfter(text, fencedJSONRe)
	}},
	{name: "fenced", find: func(text string) (map[string]any, bool) {
		return objectAfter(text, fencedRe)
	}},
	{name: "tool_calls", find: func(text string) (map[string]any, bool) {
		return enclosingObject(text, toolCallsRe, "tool_calls")
	}},
	{name: "domain_object", find: func(text string) (map[string]any, bool) {
		return enclosingObject(text, domainRe, "domain")
	}},
}

// Extract - 추출기 이름과 호출 목록, 인식 가능한 형태가 없으면 false
func Extract(text string) (string, []ToolCall, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			if calls, ok := callsFromObject(obj); ok {
				return "strict", calls, true
			}
		}
	}

	for _, ex := range extractors {
		obj, ok := ex.find(text)
		if !ok {
			continue
		}
		if calls, ok := callsFromObject(obj); ok {
			return ex.name, calls, true
		}
	}
	return "", nil, false
}

// objectAfter - 패턴이 매칭된 각 위치 바로 뒤에서 JSON 객체 디코딩
func objectAfter(text string, re *regexp.Regexp) (map[string]any, bool) {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if !strings.HasPrefix(rest, "{") {
			continue
		}
		if obj, ok := decodeObject(rest); ok {
			return obj, true
		}
	}
	return nil, false
}

// enclosingObject - 패턴 위치를 감싸면서 key 를 가진 가장 바깥쪽 객체
func enclosingObject(text string, re *regexp.Regexp, key string) (map[string]any, bool) {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil, false
	}
	for start := 0; start < loc[0]; start++ {
		if text[start] != '{' {
			continue
		}
		obj, end, ok := decodeObjectAt(text[start:])
		if !ok || start+end <= loc[0] {
			continue
		}
		if _, has := obj[key]; has {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(s string) (map[string]any, bool) {
	obj, _, ok := decodeObjectAt(s)
	return obj, ok
}

// decodeObjectAt - s 앞부분의 JSON 객체 하나와 소비한 바이트 수
func decodeObjectAt(s string) (map[string]any, int, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, 0, false
	}
	return obj, int(dec.InputOffset()), true
}

// callsFromObject - {"tool_calls":[...]} 또는 {domain, action, ...}
func callsFromObject(obj map[string]any) ([]ToolCall, bool) {
	if raw, ok := obj["tool_calls"].([]any); ok {
		return toolCalls(raw)
	}
	if _, hasDomain := obj["domain"]; hasDomain {
		if _, hasAction := obj["action"]; hasAction {
			return []ToolCall{directCommand(obj)}, true
		}
	}
	return nil, false
}

func toolCalls(raw []any) ([]ToolCall, bool) {
	calls := make([]ToolCall, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		// {"function": {"name", "arguments"}} 형태도 허용
		if fn, ok := entry["function"].(map[string]any); ok {
			entry = fn
		}
		name := model.StringValue(entry["name"])
		if name == "" {
			return nil, false
		}
		args, ok := arguments(entry["arguments"])
		if !ok {
			return nil, false
		}
		calls = append(calls, ToolCall{Name: name, Arguments: args})
	}
	if len(calls) == 0 {
		return nil, false
	}
	return calls, true
}

// arguments - 객체 또는 JSON 문자열로 인코딩된 객체
func arguments(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case nil:
		return map[string]any{}, true
	case map[string]any:
		return val, true
	case string:
		if strings.TrimSpace(val) == "" {
			return map[string]any{}, true
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(val), &args); err != nil {
			return nil, false
		}
		return args, true
	}
	return nil, false
}

// directCommand - {domain, action, ...} 를 infra_command 호출 하나로
// grafana get 은 uid/title 을 최상위 또는 params 에서 찾아 name 으로 사용
func directCommand(obj map[string]any) ToolCall {
	args := map[string]any{
		"domain": obj["domain"],
		"action": obj["action"],
	}
	if v, ok := obj["resource"]; ok && v != nil {
		args["resource"] = v
	}

	domain := strings.ToLower(model.StringValue(obj["domain"]))
	action := strings.ToLower(model.StringValue(obj["action"]))
	if domain == string(model.DomainGrafana) && action == "get" {
		params, _ := obj["params"].(map[string]any)
		for _, source := range []map[string]any{obj, params} {
			if ref := firstString(source, "uid", "title"); ref != "" {
				args["name"] = ref
				break
			}
		}
	}

	for k, v := range obj {
		if v == nil {
			continue
		}
		if _, set := args[k]; set {
			continue
		}
		args[k] = v
	}
	return infraCall(args)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := model.StringValue(m[k]); s != "" {
			return s
		}
	}
	return ""
}
