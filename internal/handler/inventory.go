package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/scanner"
)

type inventoryService interface {
	ListJobs(ctx context.Context, limit int) ([]model.JobLog, error)
	Discover(ctx context.Context, subnet string) (*model.ScanResult, error)
	Topology(ctx context.Context) ([]model.Asset, error)
}

// InventoryHandler - 작업 로그, 네트워크 탐색, 토폴로지
type InventoryHandler struct {
	svc inventoryService
}

func NewInventoryHandler(svc inventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListJobs godoc
// @Summary List remediation job logs
// @Tags jobs
// @Produce json
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} model.JobLogListResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/jobs [get]
func (h *InventoryHandler) ListJobs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	jobs, err := h.svc.ListJobs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	if jobs == nil {
		jobs = []model.JobLog{}
	}
	c.JSON(http.StatusOK, model.JobLogListResponse{Status: "success", Data: jobs})
}

// Discover godoc
// @Summary Scan a subnet and record discovered assets
// @Tags discovery
// @Accept json
// @Produce json
// @Param request body model.DiscoverRequest false "Subnet (defaults to the configured subnet)"
// @Success 200 {object} model.ScanResult
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/discover [post]
func (h *InventoryHandler) Discover(c *gin.Context) {
	var req model.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	result, err := h.svc.Discover(c.Request.Context(), req.Subnet)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scanner.ErrInvalidSubnet) || errors.Is(err, scanner.ErrSubnetTooLarge) {
			status = http.StatusBadRequest
		}
		c.JSON(status, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Topology godoc
// @Summary List discovered assets
// @Tags discovery
// @Produce json
// @Success 200 {object} model.TopologyResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/topology [get]
func (h *InventoryHandler) Topology(c *gin.Context) {
	assets, err := h.svc.Topology(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	c.JSON(http.StatusOK, model.TopologyResponse{Status: "success", Data: assets})
}
