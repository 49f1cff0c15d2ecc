package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraai/backend/internal/client"
	"github.com/infraai/backend/internal/model"
)

type rpcCall struct {
	Method    string
	Tool      string
	Arguments map[string]any
}

// fakeBackend - JSON-RPC 백엔드 흉내, tools/call 이름별로 응답 지정
type fakeBackend struct {
	t       *testing.T
	srv     *httptest.Server
	mu      sync.Mutex
	calls   []rpcCall
	healthy bool
	replies map[string]any
	status  int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	fb := &fakeBackend{t: t, healthy: true, replies: map[string]any{}, status: http.StatusOK}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if fb.healthy {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
		ID     int64          `json:"id"`
	}
	require.NoError(fb.t, json.NewDecoder(r.Body).Decode(&req))

	if req.Method == "initialize" {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"serverInfo":{"name":"fake"}}}`))
		return
	}

	call := rpcCall{Method: req.Method, Arguments: req.Params}
	key := req.Method
	if req.Method == "tools/call" {
		call.Tool, _ = req.Params["name"].(string)
		call.Arguments, _ = req.Params["arguments"].(map[string]any)
		key = call.Tool
	}
	fb.mu.Lock()
	fb.calls = append(fb.calls, call)
	status := fb.status
	reply, ok := fb.replies[key]
	fb.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	if !ok {
		reply = map[string]any{"ok": true}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": reply})
}

func (fb *fakeBackend) Calls() []rpcCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]rpcCall(nil), fb.calls...)
}

func mcpContent(t *testing.T, v any) map[string]any {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return map[string]any{"content": []any{map[string]any{"type": "text", "text": string(data)}}}
}

type fakeScanner struct {
	subnet string
}

func (f *fakeScanner) Scan(_ context.Context, subnet string) (*model.ScanResult, error) {
	f.subnet = subnet
	return &model.ScanResult{Status: "success", Subnet: subnet, HostsUp: 1, Assets: []model.Asset{{IP: "10.0.0.5"}}}, nil
}

func newTestRouter(t *testing.T, backends map[model.Domain]*fakeBackend, scanner Scanner) *Router {
	t.Helper()
	reg := client.NewRegistry(zap.NewNop())
	probes := map[model.Domain]client.ProbeKind{
		model.DomainKubernetes: client.ProbeHealthEndpoint,
		model.DomainPrometheus: client.ProbeHealthEndpoint,
		model.DomainGrafana:    client.ProbeInitialize,
		model.DomainVMware:     client.ProbeRoot,
	}
	for domain, fb := range backends {
		domain, fb := domain, fb
		reg.Register(domain, func() *client.MCPClient {
			return client.NewMCPClient(client.MCPClientConfig{
				Domain:        domain,
				BaseURL:       fb.srv.URL,
				Endpoint:      "/rpc",
				Probe:         probes[domain],
				CallTimeout:   2 * time.Second,
				HealthTimeout: time.Second,
			})
		})
	}
	return New(Options{Registry: reg, Scanner: scanner, DefaultSubnet: "10.0.0.0/30", Logger: zap.NewNop()})
}

func TestGrafanaGetResolvesTitleToUID(t *testing.T) {
	fb := newFakeBackend(t)
	fb.replies["list_dashboards"] = mcpContent(t, []map[string]any{
		{"title": "Kubernetes Cluster", "uid": "k8s01"},
		{"title": "Node Exporter Full", "uid": "abc123"},
	})
	fb.replies["get_dashboard"] = mcpContent(t, map[string]any{"dashboard": map[string]any{"uid": "abc123"}})
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainGrafana: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainGrafana, Action: "get", Resource: "dashboard", Name: "node exporter"})

	assert.JSONEq(t, `{"dashboard":{"uid":"abc123"}}`, out)
	calls := fb.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "list_dashboards", calls[0].Tool)
	assert.Equal(t, "get_dashboard", calls[1].Tool)
	assert.Equal(t, "abc123", calls[1].Arguments["uid"])
}

func TestGrafanaGetNoMatch(t *testing.T) {
	fb := newFakeBackend(t)
	fb.replies["list_dashboards"] = mcpContent(t, []map[string]any{{"title": "Node Exporter Full", "uid": "abc123"}})
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainGrafana: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainGrafana, Action: "get", Name: "redis overview"})

	assert.Equal(t, "Error: No dashboard found with title containing 'redis overview'", out)
	assert.Len(t, fb.Calls(), 1)
}

func TestGrafanaGetByUIDSkipsListing(t *testing.T) {
	fb := newFakeBackend(t)
	fb.replies["get_dashboard"] = mcpContent(t, map[string]any{"uid": "abc123"})
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainGrafana: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainGrafana, Action: "get", Extra: map[string]any{"uid": "abc123"}})

	assert.JSONEq(t, `{"uid":"abc123"}`, out)
	calls := fb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "get_dashboard", calls[0].Tool)
}

func TestGrafanaListDatasources(t *testing.T) {
	fb := newFakeBackend(t)
	fb.replies["list_datasources"] = mcpContent(t, []map[string]any{{"name": "prometheus"}})
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainGrafana: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainGrafana, Action: "list", Resource: "datasources"})
	assert.JSONEq(t, `[{"name":"prometheus"}]`, out)
}

func TestVMwareGetIsUnsupportedWithoutCall(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainVMware: fb}, nil)

	for _, action := range []string{"get", "status", "info"} {
		out := r.Execute(context.Background(), model.Command{Domain: model.DomainVMware, Action: action, Resource: "vm"})
		assert.Contains(t, out, "does not support detailed VM info/status operations")
	}
	assert.Empty(t, fb.Calls())
}

func TestVMwareCreateDefaults(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainVMware: fb}, nil)

	r.Execute(context.Background(), model.Command{Domain: model.DomainVMware, Action: "create", Name: "vm-01"})

	calls := fb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "createVM", calls[0].Tool)
	assert.Equal(t, map[string]any{"name": "vm-01", "cpu": float64(2), "memory": float64(4096)}, calls[0].Arguments)
}

func TestVMwareGetStatsReadsResource(t *testing.T) {
	fb := newFakeBackend(t)
	fb.replies["resources/read"] = map[string]any{"contents": []any{map[string]any{"uri": "vmstats://vm-01", "text": `{"cpu_usage_mhz":100}`}}}
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainVMware: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainVMware, Action: "get_stats", Name: "vm-01"})

	assert.Equal(t, `{"cpu_usage_mhz":100}`, out)
	calls := fb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "resources/read", calls[0].Method)
	assert.Equal(t, "vmstats://vm-01", calls[0].Arguments["uri"])
}

func TestKubernetesHealthFailureSkipsCall(t *testing.T) {
	fb := newFakeBackend(t)
	fb.healthy = false
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainKubernetes: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainKubernetes, Action: "list", Resource: "pods"})

	assert.Contains(t, out, "Kubernetes MCP server not accessible")
	assert.Empty(t, fb.Calls())
}

func TestKubernetesNamespaceAndAliases(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainKubernetes: fb}, nil)
	ctx := context.Background()

	r.Execute(ctx, model.Command{Domain: model.DomainKubernetes, Action: "list", Resource: "pod", Namespace: "default"})
	r.Execute(ctx, model.Command{Domain: model.DomainKubernetes, Action: "list", Resource: "Deployment", Namespace: "prod"})
	r.Execute(ctx, model.Command{Domain: model.DomainKubernetes, Action: "restart", Resource: "deployment", Name: "web"})
	r.Execute(ctx, model.Command{Domain: model.DomainKubernetes, Action: "scale", Name: "web", Extra: map[string]any{"replicas": "3"}})

	calls := fb.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, map[string]any{"resourceType": "pods"}, calls[0].Arguments)
	assert.Equal(t, map[string]any{"resourceType": "deployments", "namespace": "prod"}, calls[1].Arguments)
	assert.Equal(t, "kubectl_rollout", calls[2].Tool)
	assert.Equal(t, map[string]any{"subCommand": "restart", "resourceType": "deployments", "name": "web"}, calls[2].Arguments)
	assert.Equal(t, float64(3), calls[3].Arguments["replicas"])
}

func TestKubernetesMissingRequiredParam(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainKubernetes: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainKubernetes, Action: "describe", Resource: "pods"})

	assert.Equal(t, "Error: Missing required parameter 'name' for Kubernetes describe", out)
	assert.Empty(t, fb.Calls())
}

func TestKubernetesServerErrorIsRewritten(t *testing.T) {
	fb := newFakeBackend(t)
	fb.status = http.StatusServiceUnavailable
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainKubernetes: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainKubernetes, Action: "ping"})

	assert.Equal(t, "Error: Kubernetes MCP server is not accessible. Please check server configuration and connectivity.", out)
}

func TestPrometheusQueryRequiresQuery(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainPrometheus: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainPrometheus, Action: "query"})

	assert.Equal(t, "Error: Missing required parameter 'query' for Prometheus query", out)
	assert.Empty(t, fb.Calls())
}

func TestPrometheusQueryAndPassthrough(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainPrometheus: fb}, nil)
	ctx := context.Background()

	r.Execute(ctx, model.Command{Domain: model.DomainPrometheus, Action: "query", Query: "up"})
	r.Execute(ctx, model.Command{Domain: model.DomainPrometheus, Action: "get_targets"})

	calls := fb.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "execute_query", calls[0].Method)
	assert.Equal(t, map[string]any{"query": "up"}, calls[0].Arguments)
	assert.Equal(t, "get_targets", calls[1].Method)
}

func TestPrometheusUnsupportedAction(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, map[model.Domain]*fakeBackend{model.DomainPrometheus: fb}, nil)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainPrometheus, Action: "delete_series"})

	assert.Equal(t, "Error: Unsupported Prometheus action: delete_series. Available actions: "+
		"[execute_query, execute_range_query, get_metric_metadata, get_targets, health_check, list_metrics]", out)
	assert.Empty(t, fb.Calls())
}

func TestNetworkScanUsesDefaultSubnet(t *testing.T) {
	scanner := &fakeScanner{}
	r := newTestRouter(t, nil, scanner)

	out := r.Execute(context.Background(), model.Command{Domain: model.DomainNetwork, Action: "scan"})

	assert.Equal(t, "10.0.0.0/30", scanner.subnet)
	assert.Contains(t, out, `"hosts_up":1`)
}

func TestUnsupportedCommand(t *testing.T) {
	r := newTestRouter(t, nil, nil)

	out := r.Execute(context.Background(), model.Command{Domain: "docker", Action: "restart"})
	assert.Contains(t, out, "Command not supported: ")

	out = r.Execute(context.Background(), model.Command{Domain: model.DomainVMware, Action: "migrate"})
	assert.Contains(t, out, "Command not supported: ")
}

func TestIsServerUnavailable(t *testing.T) {
	tests := []struct {
		res  map[string]any
		want bool
	}{
		{map[string]any{"status": "error", "error": "connection refused"}, true},
		{map[string]any{"status": "error", "error": "invalid argument"}, false},
		{map[string]any{"status": "error", "error": "HTTP 404: not found"}, true},
		{map[string]any{"status": "error", "error": "All connection attempts failed"}, true},
		{map[string]any{"status": "ok", "error": "connection refused"}, false},
		{map[string]any{"error": map[string]any{"code": -32601, "message": "method not found"}}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsServerUnavailable(tt.res), tt.res)
	}
}

func TestIsFailure(t *testing.T) {
	assert.True(t, IsFailure("Error: something"))
	assert.True(t, IsFailure("Command not supported: {}"))
	assert.True(t, IsFailure(`{"jsonrpc":"2.0","error":{"code":-1}}`))
	assert.True(t, IsFailure(`{"result":{"isError":true}}`))
	assert.False(t, IsFailure(`{"jsonrpc":"2.0","result":{"ok":true}}`))
	assert.False(t, IsFailure("plain text"))
}
