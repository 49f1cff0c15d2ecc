package scanner

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/config"
	"github.com/infraai/backend/internal/model"
)

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets []model.Asset
}

func (f *fakeAssetRepo) UpsertAsset(_ context.Context, asset model.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets = append(f.assets, asset)
	return nil
}

func TestExpandCIDR(t *testing.T) {
	hosts, err := expandCIDR("10.0.0.0/30", 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, hosts)

	hosts, err = expandCIDR("10.0.0.7/32", 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.7"}, hosts)

	hosts, err = expandCIDR("10.0.0.9", 1024)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, hosts)

	hosts, err = expandCIDR("192.168.1.0/24", 1024)
	require.NoError(t, err)
	assert.Len(t, hosts, 254)

	_, err = expandCIDR("10.0.0.0/8", 1024)
	assert.ErrorIs(t, err, ErrSubnetTooLarge)

	_, err = expandCIDR("not-a-subnet", 1024)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "hypervisor", classify([]int{443, 902}))
	assert.Equal(t, "kubernetes", classify([]int{22, 6443}))
	assert.Equal(t, "database", classify([]int{5432}))
	assert.Equal(t, "server", classify([]int{22, 80}))
}

func TestScanFindsOpenPorts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	port := ln.Addr().(*net.TCPAddr).Port

	repo := &fakeAssetRepo{}
	s := New(config.ScanConfig{Ports: []int{port}, DialTimeout: time.Second, Concurrency: 4, MaxHosts: 16}, repo, zap.NewNop())
	s.lookup = func(context.Context, string) ([]string, error) { return []string{"localhost."}, nil }

	res, err := s.Scan(context.Background(), "127.0.0.1/32")
	require.NoError(t, err)

	require.Equal(t, 1, res.HostsUp)
	assert.Equal(t, "127.0.0.1", res.Assets[0].IP)
	assert.Equal(t, "localhost", res.Assets[0].Hostname)
	assert.Equal(t, []string{strconv.Itoa(port) + "/tcp unknown"}, res.Assets[0].Services)
	assert.Len(t, repo.assets, 1)
}

func TestScanSkipsClosedHosts(t *testing.T) {
	repo := &fakeAssetRepo{}
	s := New(config.ScanConfig{Ports: []int{22}, Concurrency: 2, MaxHosts: 16}, repo, zap.NewNop())
	s.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	res, err := s.Scan(context.Background(), "10.1.0.0/29")
	require.NoError(t, err)
	assert.Equal(t, 0, res.HostsUp)
	assert.Empty(t, res.Assets)
	assert.Empty(t, repo.assets)
}
