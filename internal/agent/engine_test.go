package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraai/backend/internal/model"
)

// scriptedCompleter - 호출 순서대로 응답, 받은 프롬프트 기록
type scriptedCompleter struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

type recordingRouter struct {
	commands []model.Command
	output   string
}

func (r *recordingRouter) Execute(_ context.Context, cmd model.Command) string {
	r.commands = append(r.commands, cmd)
	return r.output
}

type stubScanner struct {
	subnet string
	ctxErr error
}

func (s *stubScanner) Scan(ctx context.Context, subnet string) (*model.ScanResult, error) {
	s.subnet = subnet
	s.ctxErr = ctx.Err()
	return &model.ScanResult{Status: "success", Subnet: subnet, HostsUp: 0, Assets: []model.Asset{}}, nil
}

type stubPolicies struct{}

func (stubPolicies) ListPolicies(context.Context) ([]model.Policy, error) {
	return []model.Policy{{ID: 1, Name: "restart-on-crashloop", Priority: 10}}, nil
}

func TestRunPlainChatReturnsGeneratedText(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{" Hello there! "}}
	engine := New(Options{Completer: completer})

	out, err := engine.Run(context.Background(), Turn{
		Mode:    model.ChatModePlain,
		History: []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}, {Role: model.RoleAssistant, Content: "hey"}},
		Input:   "how are you?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there!", out.Answer)
	assert.Equal(t, []State{StateAwaitingInput, StateGenerating, StateVerify, StateFinal}, out.States)
	require.Len(t, completer.prompts, 1)
	assert.True(t, strings.HasPrefix(completer.prompts[0], plainSystemPrompt+"\n\n"))
	assert.True(t, strings.HasSuffix(completer.prompts[0], "User: hi\n\nAssistant: hey\n\nUser: how are you?\n\nAssistant:"))
}

func TestRunForcedMatchSkipsGeneration(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("should not be called")}
	router := &recordingRouter{output: `[{"title":"Node Exporter Full","uid":"abc123","folderTitle":"Infra"}]`}
	engine := New(Options{Completer: completer, Router: router})

	out, err := engine.Run(context.Background(), Turn{Mode: model.ChatModeInfra, Input: "list grafana dashboards"})
	require.NoError(t, err)

	assert.Equal(t, "grafana_dashboard", out.Detector)
	assert.Equal(t, []State{StateAwaitingInput, StateForcedMatch, StateDispatch, StateFinal}, out.States)
	require.Len(t, router.commands, 1)
	assert.Equal(t, model.DomainGrafana, router.commands[0].Domain)
	assert.Equal(t, "list", router.commands[0].Action)
	assert.Equal(t, "Found 1 dashboards:\n 1. Node Exporter Full (UID: abc123) - Folder: Infra", out.Answer)
	assert.Empty(t, completer.prompts)
}

func TestRunDispatchesExtractedToolCall(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`{"tool_calls":[{"name":"infra_command","arguments":{"domain":"kubernetes","action":"get","resource":"pod","name":"web-1","namespace":"prod"}}]}`,
		"web-1 is Running",
	}}
	router := &recordingRouter{output: `{"result":{"content":[{"type":"text","text":"web-1 Running"}]}}`}
	engine := New(Options{Completer: completer, Router: router})

	out, err := engine.Run(context.Background(), Turn{Mode: model.ChatModeInfra, Input: "is web-1 healthy in prod?"})
	require.NoError(t, err)

	require.Len(t, router.commands, 1)
	assert.Equal(t, "pod", router.commands[0].Resource)
	assert.Equal(t, "prod", router.commands[0].Namespace)
	assert.Equal(t, "web-1 is Running", out.Answer)
	assert.Contains(t, completer.prompts[1], "web-1 Running")
}

func TestRunRouterErrorBypassesFormatting(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`{"domain":"vmware","action":"get","resource":"vm","name":"db"}`}}
	router := &recordingRouter{output: "Error: VMware get is not supported"}
	engine := New(Options{Completer: completer, Router: router})

	out, err := engine.Run(context.Background(), Turn{Mode: model.ChatModeInfra, Input: "details of db"})
	require.NoError(t, err)

	assert.Equal(t, "Error: VMware get is not supported", out.Answer)
	assert.Len(t, completer.prompts, 1)
}

func TestRunInfraFallbackDetector(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"I think you want pods.", "formatted pods"}}
	router := &recordingRouter{output: `{"items":[]}`}
	engine := New(Options{Completer: completer, Router: router})

	out, err := engine.Run(context.Background(), Turn{Mode: model.ChatModeInfra, Input: "list pods in namespace kube-system"})
	require.NoError(t, err)

	assert.Equal(t, "pod_list", out.Detector)
	require.Len(t, router.commands, 1)
	assert.Equal(t, "kube-system", router.commands[0].Namespace)
	assert.Equal(t, "formatted pods", out.Answer)
}

func TestRunPlainModeSkipsFallbackDetectors(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"Pods are the smallest deployable units."}}
	router := &recordingRouter{}
	engine := New(Options{Completer: completer, Router: router})

	out, err := engine.Run(context.Background(), Turn{Mode: model.ChatModePlain, Input: "list pods"})
	require.NoError(t, err)

	assert.Empty(t, router.commands)
	assert.Equal(t, "Pods are the smallest deployable units.", out.Answer)
}

func TestRunNetworkAndPolicyTools(t *testing.T) {
	scanner := &stubScanner{}
	completer := &scriptedCompleter{err: errors.New("llm down")}
	engine := New(Options{Completer: completer, Scanner: scanner, Policies: stubPolicies{}, DefaultSubnet: "192.168.1.0/24"})

	out, err := engine.Run(context.Background(), Turn{Input: "scan the network"})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.0/24", scanner.subnet)
	assert.Equal(t, "No items found.", out.Answer)

	out, err = engine.Run(context.Background(), Turn{Input: "show policies"})
	require.NoError(t, err)
	assert.Equal(t, "Found 1 items:\n 1. restart-on-crashloop", out.Answer)
}

func TestRunGenerationFailure(t *testing.T) {
	engine := New(Options{Completer: &scriptedCompleter{err: errors.New("connection refused")}})

	_, err := engine.Run(context.Background(), Turn{Input: "hello"})
	assert.ErrorContains(t, err, "connection refused")

	_, err = engine.Run(context.Background(), Turn{Input: "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNetworkScanIgnoresRequestCancellation(t *testing.T) {
	scanner := &stubScanner{}
	engine := New(Options{Completer: &scriptedCompleter{}, Scanner: scanner, DefaultSubnet: "192.168.1.0/24"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, Turn{Input: "scan the network 10.0.0.0/24"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/24", scanner.subnet)
	assert.NoError(t, scanner.ctxErr)
}
