package service

import (
	"context"
	"strings"

	"github.com/infraai/backend/internal/model"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 500
)

type jobLogReader interface {
	ListJobLogs(ctx context.Context, limit int) ([]model.JobLog, error)
}

type subnetScanner interface {
	Scan(ctx context.Context, subnet string) (*model.ScanResult, error)
}

type assetReader interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
}

// InventoryService - 작업 로그 조회, 네트워크 탐색, 토폴로지 조회
type InventoryService struct {
	jobs          jobLogReader
	scanner       subnetScanner
	assets        assetReader
	defaultSubnet string
}

func NewInventoryService(jobs jobLogReader, scanner subnetScanner, assets assetReader, defaultSubnet string) *InventoryService {
	return &InventoryService{jobs: jobs, scanner: scanner, assets: assets, defaultSubnet: defaultSubnet}
}

// ListJobs - limit 가 0 이하면 50, 최대 500
func (s *InventoryService) ListJobs(ctx context.Context, limit int) ([]model.JobLog, error) {
	if limit <= 0 {
		limit = defaultJobLimit
	}
	if limit > maxJobLimit {
		limit = maxJobLimit
	}
	return s.jobs.ListJobLogs(ctx, limit)
}

func (s *InventoryService) Discover(ctx context.Context, subnet string) (*model.ScanResult, error) {
	subnet = strings.TrimSpace(subnet)
	if subnet == "" {
		subnet = s.defaultSubnet
	}
	return s.scanner.Scan(ctx, subnet)
}

func (s *InventoryService) Topology(ctx context.Context) ([]model.Asset, error) {
	return s.assets.ListAssets(ctx)
}
