package model

import "encoding/json"

// ActionDescriptor - 정책 평가 결과로 큐에 적재되는 구체적인 조치 지시
// 템플릿에 있던 그 외의 키는 Extra 로 보존
type ActionDescriptor struct {
	Tool           string            `json:"tool"`
	Params         map[string]any    `json:"params,omitempty"`
	PolicyName     string            `json:"policy_name"`
	AlertLabels    map[string]string `json:"alert_labels"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Extra          map[string]any    `json:"-"`
}

func (a ActionDescriptor) MarshalJSON() ([]byte, error) {
	type alias ActionDescriptor
	return marshalWithExtra(alias(a), a.Extra)
}

func (a *ActionDescriptor) UnmarshalJSON(data []byte) error {
	type alias ActionDescriptor
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	extra, err := extraFields(data, "tool", "params", "policy_name", "alert_labels", "idempotency_key")
	if err != nil {
		return err
	}
	*a = ActionDescriptor(known)
	a.Extra = extra
	return nil
}
