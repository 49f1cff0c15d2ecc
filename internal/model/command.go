package model

import (
	"encoding/json"
	"strings"
)

// Domain - 명령을 처리할 백엔드 인프라 범주
type Domain string

const (
	DomainKubernetes Domain = "kubernetes"
	DomainPrometheus Domain = "prometheus"
	DomainGrafana    Domain = "grafana"
	DomainVMware     Domain = "vmware"
	DomainNetwork    Domain = "network"
)

var Domains = []Domain{DomainKubernetes, DomainPrometheus, DomainGrafana, DomainVMware, DomainNetwork}

func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// Title - 사용자 메시지용 표기 (예: "Kubernetes", "VMware")
func (d Domain) Title() string {
	switch d {
	case DomainVMware:
		return "VMware"
	case "":
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

const DefaultNamespace = "default"

// Command - Router 가 소비하는 정규화된 명령
// domain 별 추가 필드(replicas, subnet, patch_data 등)는 Extra 에 보관
type Command struct {
	Domain    Domain         `json:"domain"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	Name      string         `json:"name,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
	Query     string         `json:"query,omitempty"`
	Extra     map[string]any `json:"-"`
}

var commandFields = []string{"domain", "action", "resource", "name", "namespace", "query"}

func (c Command) MarshalJSON() ([]byte, error) {
	type alias Command
	return marshalWithExtra(alias(c), c.Extra)
}

// UnmarshalJSON - 모델이 중첩 params 객체에 필드를 넣는 경우도 평탄화
func (c *Command) UnmarshalJSON(data []byte) error {
	type alias Command
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := extraFields(data, commandFields...)
	if err != nil {
		return err
	}
	*c = Command(known)
	c.Extra = extra

	if nested, ok := c.Extra["params"].(map[string]any); ok {
		delete(c.Extra, "params")
		for k, v := range nested {
			c.setIfEmpty(k, v)
		}
	}
	c.Domain = Domain(strings.ToLower(strings.TrimSpace(string(c.Domain))))
	c.Action = strings.ToLower(strings.TrimSpace(c.Action))
	return nil
}

func (c *Command) setIfEmpty(key string, v any) {
	s := StringValue(v)
	switch key {
	case "resource":
		if c.Resource == "" {
			c.Resource = s
		}
	case "name":
		if c.Name == "" {
			c.Name = s
		}
	case "namespace":
		if c.Namespace == "" {
			c.Namespace = s
		}
	case "query":
		if c.Query == "" {
			c.Query = s
		}
	case "domain", "action":
	default:
		if c.Extra == nil {
			c.Extra = map[string]any{}
		}
		if _, exists := c.Extra[key]; !exists {
			c.Extra[key] = v
		}
	}
}

// Field - 알려진 필드 또는 Extra 값 조회, 빈 값은 없는 것으로 취급
func (c Command) Field(key string) (any, bool) {
	var s string
	switch key {
	case "domain":
		s = string(c.Domain)
	case "action":
		s = c.Action
	case "resource":
		s = c.Resource
	case "name":
		s = c.Name
	case "namespace":
		s = c.Namespace
	case "query":
		s = c.Query
	default:
		v, ok := c.Extra[key]
		if !ok || v == nil {
			return nil, false
		}
		if str, isStr := v.(string); isStr && str == "" {
			return nil, false
		}
		return v, true
	}
	if s == "" {
		return nil, false
	}
	return s, true
}

func (c Command) String(key string) string {
	v, _ := c.Field(key)
	return StringValue(v)
}

// EffectiveNamespace - 비어 있으면 default
func (c Command) EffectiveNamespace() string {
	if c.Namespace == "" {
		return DefaultNamespace
	}
	return c.Namespace
}

// CommandResult - 구조화된 명령 API 응답
type CommandResult struct {
	Result string `json:"result"`
}
