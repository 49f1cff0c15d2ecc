package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/infraai/backend/internal/model"
)

var ErrInvalidPolicy = errors.New("invalid policy")

// policyRepo - DB 인터페이스
type policyRepo interface {
	ListPolicies(ctx context.Context) ([]model.Policy, error)
	GetPolicyByID(ctx context.Context, id int64) (*model.Policy, error)
	CreatePolicy(ctx context.Context, policy model.Policy) (int64, error)
	DeletePolicy(ctx context.Context, id int64) error
}

// PolicyService - 자동복구 정책 CRUD
type PolicyService struct {
	db policyRepo
}

func NewPolicyService(db policyRepo) *PolicyService {
	return &PolicyService{db: db}
}

func (s *PolicyService) ListPolicies(ctx context.Context) ([]model.Policy, error) {
	return s.db.ListPolicies(ctx)
}

func (s *PolicyService) GetPolicy(ctx context.Context, id int64) (*model.Policy, error) {
	return s.db.GetPolicyByID(ctx, id)
}

// CreatePolicy - name, condition, action.tool 필수, priority 생략 시 100
func (s *PolicyService) CreatePolicy(ctx context.Context, req model.PolicyRequest) (int64, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	if len(req.Condition) == 0 {
		return 0, fmt.Errorf("%w: condition is required", ErrInvalidPolicy)
	}
	if model.StringValue(req.Action["tool"]) == "" {
		return 0, fmt.Errorf("%w: action.tool is required", ErrInvalidPolicy)
	}
	if params, ok := req.Action["params"]; ok {
		if _, isMap := params.(map[string]any); !isMap {
			return 0, fmt.Errorf("%w: action.params must be an object", ErrInvalidPolicy)
		}
	}

	policy := model.Policy{
		Name:      name,
		Condition: req.Condition,
		Action:    req.Action,
		Priority:  model.DefaultPolicyPriority,
	}
	if req.Priority != nil {
		policy.Priority = *req.Priority
	}
	return s.db.CreatePolicy(ctx, policy)
}

func (s *PolicyService) DeletePolicy(ctx context.Context, id int64) error {
	return s.db.DeletePolicy(ctx, id)
}
