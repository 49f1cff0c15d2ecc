package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/infraai/backend/internal/model"
)

type paramKind int

const (
	kindString paramKind = iota
	kindInt
	kindBool
	kindRaw
	// kindResource - 단수형 리소스 이름을 복수형 정식 이름으로
	kindResource
	// kindNamespace - default 네임스페이스면 인자에서 제외
	kindNamespace
)

// param - Command 필드 하나를 백엔드 인자 하나로 바인딩하는 선언
type param struct {
	field    string
	arg      string
	kind     paramKind
	required bool
	def      any
	fixed    any
}

func str(field, arg string) param { return param{field: field, arg: arg, kind: kindString} }

func required(p param) param {
	p.required = true
	return p
}

func withDefault(p param, v any) param {
	p.def = v
	return p
}

func integer(field, arg string) param { return param{field: field, arg: arg, kind: kindInt} }
func boolean(field, arg string) param { return param{field: field, arg: arg, kind: kindBool} }
func raw(field, arg string) param { return param{field: field, arg: arg, kind: kindRaw} }
func resource(arg string) param { return param{field: "resource", arg: arg, kind: kindResource} }
func namespace() param { return param{field: "namespace", arg: "namespace", kind: kindNamespace} }
func fixed(arg string, v any) param { return param{arg: arg, fixed: v} }

var resourceAliases = map[string]string{
	"pod":         "pods",
	"pods":        "pods",
	"deployment":  "deployments",
	"deployments": "deployments",
	"deploy":      "deployments",
	"service":     "services",
	"services":    "services",
	"svc":         "services",
	"node":        "nodes",
	"nodes":       "nodes",
	"namespace":   "namespaces",
	"namespaces":  "namespaces",
	"ns":          "namespaces",
}

// canonicalResource - 별칭 테이블에 없으면 그대로 전달
func canonicalResource(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := resourceAliases[key]; ok {
		return canonical
	}
	return key
}

// bind - 선언된 파라미터만 인자로 전달, 필수값 누락/타입 오류는 검증 에러
func bind(cmd model.Command, params []param) (map[string]any, error) {
	args := map[string]any{}
	for _, p := range params {
		if p.fixed != nil {
			args[p.arg] = p.fixed
			continue
		}

		v, ok := cmd.Field(p.field)
		if !ok {
			if p.required {
				return nil, fmt.Errorf("Missing required parameter '%s' for %s %s", p.field, cmd.Domain.Title(), cmd.Action)
			}
			if p.def != nil {
				args[p.arg] = p.def
			}
			continue
		}

		switch p.kind {
		case kindInt:
			n, ok := model.IntValue(v)
			if !ok {
				return nil, fmt.Errorf("Parameter '%s' must be an integer, got %v", p.field, v)
			}
			args[p.arg] = n
		case kindBool:
			b, err := boolValue(v)
			if err != nil {
				return nil, fmt.Errorf("Parameter '%s' must be a boolean, got %v", p.field, v)
			}
			args[p.arg] = b
		case kindRaw:
			args[p.arg] = v
		case kindResource:
			args[p.arg] = canonicalResource(model.StringValue(v))
		case kindNamespace:
			if ns := model.StringValue(v); ns != model.DefaultNamespace {
				args[p.arg] = ns
			}
		default:
			args[p.arg] = model.StringValue(v)
		}
	}
	return args, nil
}

func boolValue(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	}
	return false, fmt.Errorf("not a boolean")
}
