// 알림 -> 자동복구 정책 매칭
//
// 평가 순서:
//  1. 웹훅의 alerts 를 페이로드 순서대로
//  2. 각 알림마다 정책을 priority 오름차순으로
//  3. 처음 매칭된 (알림, 정책) 쌍의 action 템플릿을 깊은 복사 후 라벨/어노테이션 치환
//
// 정책이 없거나 매칭되지 않으면 (nil, false), 에러가 아님

package service

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infraai/backend/internal/model"
)

const (
	labelPlaceholder      = "${label."
	annotationPlaceholder = "${annotation."
)

// Evaluate - 정책은 변경하지 않음
func Evaluate(policies []model.Policy, webhook model.AlertmanagerWebhook) (*model.ActionDescriptor, bool) {
	if len(policies) == 0 {
		return nil, false
	}

	ordered := make([]model.Policy, len(policies))
	copy(ordered, policies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, alert := range webhook.Alerts {
		for _, policy := range ordered {
			if matchCondition(policy.Condition, alert, webhook.Status) {
				return buildAction(policy, alert), true
			}
		}
	}
	return nil, false
}

// matchCondition - 네 가지 조건 형태 중 처음 해당하는 것 하나만 평가
func matchCondition(cond model.Condition, alert model.Alert, status string) bool {
	label, hasLabel := cond["label"]
	value, hasValue := cond["value"]
	if hasLabel && hasValue {
		key := model.StringValue(label)
		actual := alert.Labels[key]
		if actual == "" {
			actual = alert.Annotations[key]
		}
		return actual != "" && actual == model.StringValue(value)
	}

	if raw, ok := cond["labels"]; ok {
		required, ok := raw.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range required {
			actual, exists := alert.Labels[k]
			if !exists || actual != model.StringValue(v) {
				return false
			}
		}
		return true
	}

	if expected, ok := cond["status"]; ok {
		return status == model.StringValue(expected)
	}

	// expression 은 예약된 형태, 항상 false
	return false
}

func buildAction(policy model.Policy, alert model.Alert) *model.ActionDescriptor {
	tpl, _ := model.DeepCopy(policy.Action).(map[string]any)

	action := &model.ActionDescriptor{
		Tool:           model.StringValue(tpl["tool"]),
		PolicyName:     policy.Name,
		AlertLabels:    copyLabels(alert.Labels),
		IdempotencyKey: idempotencyKey(policy.Name, alert),
	}
	if params, ok := tpl["params"].(map[string]any); ok {
		action.Params = Interpolate(params, alert.Labels, alert.Annotations)
	}

	for k, v := range tpl {
		switch k {
		case "tool", "params", "policy_name", "alert_labels", "idempotency_key":
			continue
		}
		if action.Extra == nil {
			action.Extra = map[string]any{}
		}
		action.Extra[k] = v
	}
	return action
}

// Interpolate - ${label.X} / ${annotation.X} 가 들어간 문자열 값을 해당 값으로 교체
// 키가 없으면 원래 문자열 유지, 문자열이 아닌 값은 그대로
func Interpolate(params map[string]any, labels, annotations map[string]string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		switch {
		case strings.Contains(s, labelPlaceholder):
			out[k] = lookupPlaceholder(s, labelPlaceholder, labels)
		case strings.Contains(s, annotationPlaceholder):
			out[k] = lookupPlaceholder(s, annotationPlaceholder, annotations)
		default:
			out[k] = s
		}
	}
	return out
}

func lookupPlaceholder(value, prefix string, source map[string]string) string {
	rest := value[strings.Index(value, prefix)+len(prefix):]
	key := rest
	if end := strings.Index(rest, "}"); end >= 0 {
		key = rest[:end]
	}
	if resolved, ok := source[key]; ok {
		return resolved
	}
	return value
}

// idempotencyKey - 같은 정책이 같은 알림 발생에 대해 만드는 조치는 같은 키
func idempotencyKey(policyName string, alert model.Alert) string {
	identity := alert.Fingerprint
	if identity == "" {
		keys := make([]string, 0, len(alert.Labels))
		for k := range alert.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+alert.Labels[k])
		}
		identity = strings.Join(pairs, ",")
	}
	name := policyName + "|" + identity + "|" + alert.StartsAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func copyLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
