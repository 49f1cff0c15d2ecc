package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/infraai/backend/internal/db"
	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/service"
)

// policyService - 서비스 인터페이스
type policyService interface {
	ListPolicies(ctx context.Context) ([]model.Policy, error)
	GetPolicy(ctx context.Context, id int64) (*model.Policy, error)
	CreatePolicy(ctx context.Context, req model.PolicyRequest) (int64, error)
	DeletePolicy(ctx context.Context, id int64) error
}

// PolicyHandler - 자동복구 정책 관련 핸들러
type PolicyHandler struct {
	svc policyService
}

func NewPolicyHandler(svc policyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

// ListPolicies godoc
// @Summary List remediation policies
// @Tags policies
// @Produce json
// @Success 200 {object} model.PolicyListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/policies [get]
func (h *PolicyHandler) ListPolicies(c *gin.Context) {
	policies, err := h.svc.ListPolicies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.PolicyListResponse{Status: "success", Data: policies})
}

// GetPolicy godoc
// @Summary Get a remediation policy by ID
// @Tags policies
// @Produce json
// @Param id path int true "Policy ID"
// @Success 200 {object} model.PolicyResponse
// @Failure 400,404,500 {object} model.ErrorResponse
// @Router /api/v1/policies/{id} [get]
func (h *PolicyHandler) GetPolicy(c *gin.Context) {
	id, ok := policyID(c)
	if !ok {
		return
	}
	policy, err := h.svc.GetPolicy(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.PolicyResponse{Status: "success", Data: policy})
}

// CreatePolicy godoc
// @Summary Create a remediation policy
// @Tags policies
// @Accept json
// @Produce json
// @Param request body model.PolicyRequest true "Policy"
// @Success 201 {object} model.PolicyMutationResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/policies [post]
func (h *PolicyHandler) CreatePolicy(c *gin.Context) {
	var req model.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	id, err := h.svc.CreatePolicy(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, model.PolicyMutationResponse{Status: "success", Message: "policy created", ID: id})
}

// DeletePolicy godoc
// @Summary Delete a remediation policy
// @Tags policies
// @Produce json
// @Param id path int true "Policy ID"
// @Success 200 {object} model.PolicyMutationResponse
// @Failure 400,404,500 {object} model.ErrorResponse
// @Router /api/v1/policies/{id} [delete]
func (h *PolicyHandler) DeletePolicy(c *gin.Context) {
	id, ok := policyID(c)
	if !ok {
		return
	}
	if err := h.svc.DeletePolicy(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.PolicyMutationResponse{Status: "success", Message: "policy deleted", ID: id})
}

func policyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// statusFor - 서비스 에러를 HTTP 상태 코드로
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidPolicy), errors.Is(err, service.ErrInvalidChatRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
