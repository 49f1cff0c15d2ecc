// 대화 한 턴을 처리하는 추출 상태 머신
//
// 상태 전이:
//
//	AwaitingInput -> ForcedMatch  (결정적 감지기가 명령을 바로 합성)
//	AwaitingInput -> Generating   (LLM 응답 생성)
//	Generating    -> Verify       (응답에서 구조화된 호출 추출 시도)
//	Verify        -> Dispatch | Final
//	ForcedMatch   -> Dispatch
//	Dispatch      -> Final        (백엔드 결과 포맷팅)
//
// 추출 실패나 모호한 응답은 에러가 아니라 그대로 최종 답변이 됨

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/infraai/backend/internal/model"
)

type State int

const (
	StateAwaitingInput State = iota
	StateForcedMatch
	StateGenerating
	StateVerify
	StateDispatch
	StateFinal
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateForcedMatch:
		return "forced_match"
	case StateGenerating:
		return "generating"
	case StateVerify:
		return "verify"
	case StateDispatch:
		return "dispatch"
	case StateFinal:
		return "final"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	ToolInfraCommand     = "infra_command"
	ToolNetworkDiscovery = "network_discovery"
	ToolGetPolicies      = "get_policies"
)

const defaultMaxSteps = 16

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrTooManySteps = errors.New("state machine exceeded step limit")
)

// Completer - 텍스트 완성 서비스 (Ollama, Gemini)
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CommandRouter interface {
	Execute(ctx context.Context, cmd model.Command) string
}

type NetworkScanner interface {
	Scan(ctx context.Context, subnet string) (*model.ScanResult, error)
}

type PolicyLister interface {
	ListPolicies(ctx context.Context) ([]model.Policy, error)
}

// ToolCall - 모델 또는 감지기가 만든 구조화된 호출
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type Options struct {
	Completer     Completer
	Router        CommandRouter
	Scanner       NetworkScanner
	Policies      PolicyLister
	DefaultSubnet string
	MaxSteps      int
	Logger        *zap.Logger
}

type Engine struct {
	completer     Completer
	router        CommandRouter
	scanner       NetworkScanner
	policies      PolicyLister
	defaultSubnet string
	maxSteps      int
	log           *zap.Logger
}

func New(opts Options) *Engine {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		completer:     opts.Completer,
		router:        opts.Router,
		scanner:       opts.Scanner,
		policies:      opts.Policies,
		defaultSubnet: opts.DefaultSubnet,
		maxSteps:      opts.MaxSteps,
		log:           opts.Logger,
	}
}

// Turn - 한 턴의 입력
type Turn struct {
	Mode    model.ChatMode
	History []model.ChatMessage
	Input   string
}

// Outcome - 한 턴의 결과, Messages 는 이번 턴에 추가된 메시지
type Outcome struct {
	Answer   string
	Messages []model.ChatMessage
	Calls    []ToolCall
	Detector string
	States   []State
}

// Run - 사용자 입력 하나를 최종 답변까지 처리
func (e *Engine) Run(ctx context.Context, turn Turn) (*Outcome, error) {
	input := strings.TrimSpace(turn.Input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if turn.Mode == "" {
		turn.Mode = model.ChatModePlain
	}

	out := &Outcome{Messages: []model.ChatMessage{{Role: model.RoleUser, Content: input}}}
	var generated string

	state := StateAwaitingInput
	for step := 0; ; step++ {
		if step >= e.maxSteps {
			return nil, ErrTooManySteps
		}
		out.States = append(out.States, state)

		switch state {
		case StateAwaitingInput:
			if name, call, ok := detect(forcedDetectors, input, e.defaultSubnet); ok {
				out.Detector = name
				out.Calls = []ToolCall{call}
				state = StateForcedMatch
				continue
			}
			state = StateGenerating

		case StateForcedMatch:
			e.log.Debug("forced detector matched", zap.String("detector", out.Detector))
			state = StateDispatch

		case StateGenerating:
			if e.completer == nil {
				return nil, errors.New("no completer configured")
			}
			resp, err := e.completer.Complete(ctx, BuildPrompt(turn.Mode, turn.History, input))
			if err != nil {
				return nil, fmt.Errorf("failed to generate response: %w", err)
			}
			generated = resp
			out.Messages = append(out.Messages, model.ChatMessage{Role: model.RoleAssistant, Content: resp})
			state = StateVerify

		case StateVerify:
			if extractor, calls, ok := Extract(generated); ok {
				e.log.Debug("structured call extracted", zap.String("extractor", extractor), zap.Int("calls", len(calls)))
				out.Calls = calls
				state = StateDispatch
				continue
			}
			if turn.Mode == model.ChatModeInfra {
				if name, call, ok := detect(fallbackDetectors, input, e.defaultSubnet); ok {
					out.Detector = name
					out.Calls = []ToolCall{call}
					state = StateDispatch
					continue
				}
			}
			out.Answer = strings.TrimSpace(generated)
			state = StateFinal

		case StateDispatch:
			answers := make([]string, 0, len(out.Calls))
			for _, call := range out.Calls {
				result := e.dispatch(ctx, call)
				out.Messages = append(out.Messages, model.ChatMessage{Role: model.RoleTool, Content: result})
				answers = append(answers, e.format(ctx, result))
			}
			out.Answer = strings.Join(answers, "\n\n")
			out.Messages = append(out.Messages, model.ChatMessage{Role: model.RoleAssistant, Content: out.Answer})
			state = StateFinal

		case StateFinal:
			return out, nil
		}
	}
}

// dispatch - 호출 하나를 실행하고 결과 문자열 반환, 실패도 문자열
func (e *Engine) dispatch(ctx context.Context, call ToolCall) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("tool call panicked", zap.String("tool", call.Name), zap.Any("panic", rec))
			result = fmt.Sprintf("Error executing command: %v", rec)
		}
	}()

	switch call.Name {
	case ToolInfraCommand:
		if e.router == nil {
			return "Error: command router is not configured"
		}
		cmd, err := commandFromArgs(call.Arguments)
		if err != nil {
			return fmt.Sprintf("Error executing command: %v", err)
		}
		return e.router.Execute(ctx, cmd)

	case ToolNetworkDiscovery:
		if e.scanner == nil {
			return "Error: network scanner is not configured"
		}
		subnet := model.StringValue(call.Arguments["subnet"])
		if subnet == "" {
			subnet = e.defaultSubnet
		}
		// 요청이 취소돼도 시작한 스캔은 끝까지 (자산 기록 포함)
		res, err := e.scanner.Scan(context.WithoutCancel(ctx), subnet)
		if err != nil {
			return fmt.Sprintf("Error: network discovery failed: %v", err)
		}
		return encode(res)

	case ToolGetPolicies:
		if e.policies == nil {
			return "Error: policy store is not configured"
		}
		policies, err := e.policies.ListPolicies(ctx)
		if err != nil {
			return fmt.Sprintf("Error: failed to load policies: %v", err)
		}
		if policies == nil {
			policies = []model.Policy{}
		}
		return encode(policies)
	}

	// 모델이 infra_command 인자를 도구 이름 없이 보낸 경우
	if _, ok := call.Arguments["domain"]; ok {
		cmd, err := commandFromArgs(call.Arguments)
		if err == nil && cmd.Domain.Valid() && e.router != nil {
			return e.router.Execute(ctx, cmd)
		}
	}
	return fmt.Sprintf("Error: Unknown tool: %s", call.Name)
}

// commandFromArgs - Command 의 JSON 디코딩 규칙(params 평탄화, 소문자화)을 그대로 적용
func commandFromArgs(args map[string]any) (model.Command, error) {
	var cmd model.Command
	data, err := json.Marshal(args)
	if err != nil {
		return cmd, err
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("Error executing command: %v", err)
	}
	return string(data)
}
