// 서브넷 TCP 연결 스캔으로 호스트/서비스 탐색
//
// 처리 흐름:
//  1. CIDR 을 호스트 주소 목록으로 펼침 (MaxHosts 초과 시 거부)
//  2. ants 풀에서 호스트별로 포트 목록에 TCP 연결 시도
//  3. 하나라도 열린 포트가 있으면 up, 역방향 DNS 로 hostname 조회
//  4. 발견한 자산을 저장소에 upsert

package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/config"
	"github.com/infraai/backend/internal/model"
)

var (
	ErrInvalidSubnet  = errors.New("invalid subnet")
	ErrSubnetTooLarge = errors.New("subnet too large")
)

var wellKnownPorts = map[int]string{
	22:    "ssh",
	80:    "http",
	443:   "https",
	902:   "vmware-auth",
	3306:  "mysql",
	5432:  "postgresql",
	6379:  "redis",
	6443:  "kubernetes-api",
	8080:  "http-alt",
	9090:  "prometheus",
	10250: "kubelet",
}

// assetRepo - 스캔 결과 저장소
type assetRepo interface {
	UpsertAsset(ctx context.Context, asset model.Asset) error
}

// dialFunc - 테스트에서 교체 가능
type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type Scanner struct {
	repo        assetRepo
	ports       []int
	dialTimeout time.Duration
	concurrency int
	maxHosts    int
	dial        dialFunc
	lookup      func(ctx context.Context, addr string) ([]string, error)
	log         *zap.Logger
}

func New(cfg config.ScanConfig, repo assetRepo, log *zap.Logger) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 64
	}
	if cfg.MaxHosts <= 0 {
		cfg.MaxHosts = 1024
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 500 * time.Millisecond
	}
	dialer := &net.Dialer{}
	return &Scanner{
		repo:        repo,
		ports:       cfg.Ports,
		dialTimeout: cfg.DialTimeout,
		concurrency: cfg.Concurrency,
		maxHosts:    cfg.MaxHosts,
		dial:        dialer.DialContext,
		lookup:      net.DefaultResolver.LookupAddr,
		log:         log,
	}
}

func (s *Scanner) Scan(ctx context.Context, subnet string) (*model.ScanResult, error) {
	hosts, err := expandCIDR(subnet, s.maxHosts)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(s.concurrency,
		ants.WithExpiryDuration(10*time.Second),
		ants.WithPanicHandler(func(p any) {
			s.log.Error("scan task panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		assets []model.Asset
		wg     sync.WaitGroup
	)
	for _, host := range hosts {
		host := host
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			asset, up := s.probeHost(ctx, host)
			if !up {
				return
			}
			mu.Lock()
			assets = append(assets, asset)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			s.log.Warn("failed to submit scan task", zap.String("host", host), zap.Error(submitErr))
		}
	}
	wg.Wait()

	sort.Slice(assets, func(i, j int) bool {
		return compareIP(assets[i].IP, assets[j].IP) < 0
	})

	if s.repo != nil {
		for _, asset := range assets {
			if err := s.repo.UpsertAsset(ctx, asset); err != nil {
				s.log.Warn("failed to store asset", zap.String("ip", asset.IP), zap.Error(err))
			}
		}
	}

	s.log.Info("network scan finished",
		zap.String("subnet", subnet),
		zap.Int("hosts_scanned", len(hosts)),
		zap.Int("hosts_up", len(assets)),
	)

	if assets == nil {
		assets = []model.Asset{}
	}
	return &model.ScanResult{Status: "success", Subnet: subnet, HostsUp: len(assets), Assets: assets}, nil
}

func (s *Scanner) probeHost(ctx context.Context, host string) (model.Asset, bool) {
	var open []int
	for _, port := range s.ports {
		if ctx.Err() != nil {
			break
		}
		dialCtx, cancel := context.WithTimeout(ctx, s.dialTimeout)
		conn, err := s.dial(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		cancel()
		if err != nil {
			continue
		}
		_ = conn.Close()
		open = append(open, port)
	}
	if len(open) == 0 {
		return model.Asset{}, false
	}

	asset := model.Asset{
		IP:       host,
		Type:     classify(open),
		Services: services(open),
		LastSeen: time.Now().UTC(),
	}
	if s.lookup != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, s.dialTimeout)
		if names, err := s.lookup(lookupCtx, host); err == nil && len(names) > 0 {
			asset.Hostname = strings.TrimSuffix(names[0], ".")
		}
		cancel()
	}
	return asset, true
}

func services(ports []int) []string {
	out := make([]string, 0, len(ports))
	for _, port := range ports {
		name, ok := wellKnownPorts[port]
		if !ok {
			name = "unknown"
		}
		out = append(out, fmt.Sprintf("%d/tcp %s", port, name))
	}
	return out
}

// classify - 열린 포트로 자산 유형 추정
func classify(ports []int) string {
	has := map[int]bool{}
	for _, p := range ports {
		has[p] = true
	}
	switch {
	case has[902]:
		return "hypervisor"
	case has[6443] || has[10250]:
		return "kubernetes"
	case has[3306] || has[5432] || has[6379]:
		return "database"
	default:
		return "server"
	}
}

// expandCIDR - 네트워크/브로드캐스트 주소를 제외한 호스트 목록 (/31, /32 는 전체)
func expandCIDR(subnet string, maxHosts int) ([]string, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(subnet))
	if err != nil {
		if addr, addrErr := netip.ParseAddr(strings.TrimSpace(subnet)); addrErr == nil {
			return []string{addr.String()}, nil
		}
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSubnet, subnet, err)
	}
	prefix = prefix.Masked()
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("%w %q: only IPv4 is supported", ErrInvalidSubnet, subnet)
	}

	hostBits := 32 - prefix.Bits()
	if hostBits > 30 || (1<<hostBits) > maxHosts+2 {
		return nil, fmt.Errorf("%w: %s exceeds %d hosts", ErrSubnetTooLarge, subnet, maxHosts)
	}

	var hosts []string
	for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
		hosts = append(hosts, addr.String())
	}
	if hostBits >= 2 {
		hosts = hosts[1 : len(hosts)-1]
	}
	return hosts, nil
}

func compareIP(a, b string) int {
	addrA, errA := netip.ParseAddr(a)
	addrB, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return addrA.Compare(addrB)
}
