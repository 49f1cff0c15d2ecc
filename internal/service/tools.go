// 워커 도구 테이블
// 각 도구는 params 를 Command 로 바꿔 Router 에 위임하고
// Router 출력이 실패 형태인지로 성공/실패를 판정

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/router"
)

// errMissingParameter - 백엔드 호출 전에 실패한 경우
var errMissingParameter = errors.New("missing required parameter")

type commandRunner interface {
	Execute(ctx context.Context, cmd model.Command) string
}

// NewToolTable - 도구 이름 -> 핸들러
func NewToolTable(r commandRunner) map[string]Tool {
	t := toolTable{runner: r}
	tools := map[string]Tool{
		"restart_pod":           {Handler: t.restartPod},
		"delete_pod":            {Handler: t.restartPod},
		"restart_deployment":    {Handler: t.restartDeployment},
		"scale_deployment":      {Handler: t.scaleDeployment},
		"restart_vm":            {Handler: t.restartVM},
		"power_on_vm":           {Handler: t.vmPower("power_on")},
		"power_off_vm":          {Handler: t.vmPower("power_off")},
		"create_vm":             {Handler: t.createVM, NonIdempotent: true},
		"clone_vm":              {Handler: t.cloneVM, NonIdempotent: true},
		"create_snapshot":       {Handler: t.createSnapshot, NonIdempotent: true},
		"query_prometheus":      {Handler: t.queryPrometheus},
		"get_grafana_dashboard": {Handler: t.grafanaDashboard},
		"scan_network":          {Handler: t.scanNetwork},
	}
	for _, alias := range []string{"restart_vm", "restart_pod", "scale_deployment", "query_prometheus", "get_grafana_dashboard"} {
		tools["mcp_"+alias] = tools[alias]
	}
	return tools
}

type toolTable struct {
	runner commandRunner
}

func (t toolTable) run(ctx context.Context, cmd model.Command) ToolResult {
	out := t.runner.Execute(ctx, cmd)
	if router.IsFailure(out) {
		return ToolResult{Status: model.JobStatusError, Output: out}
	}
	return ToolResult{Status: model.JobStatusSuccess, Output: out}
}

// param - 앞의 키부터 처음 비어 있지 않은 값
func param(params map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := model.StringValue(params[k]); v != "" {
			return v
		}
	}
	return ""
}

func requireParam(params map[string]any, keys ...string) (string, error) {
	if v := param(params, keys...); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w %q", errMissingParameter, keys[0])
}

// extra - 값이 있는 키만 복사
func extra(params map[string]any, keys ...string) map[string]any {
	out := map[string]any{}
	for _, k := range keys {
		if v, ok := params[k]; ok && v != nil && v != "" {
			out[k] = v
		}
	}
	return out
}

func (t toolTable) restartPod(ctx context.Context, params map[string]any) (ToolResult, error) {
	pod, err := requireParam(params, "pod_name", "name", "pod")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{
		Domain:    model.DomainKubernetes,
		Action:    "delete",
		Resource:  "pods",
		Name:      pod,
		Namespace: param(params, "namespace"),
	}), nil
}

func (t toolTable) restartDeployment(ctx context.Context, params map[string]any) (ToolResult, error) {
	deployment, err := requireParam(params, "deployment_name", "name", "deployment")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{
		Domain:    model.DomainKubernetes,
		Action:    "restart",
		Resource:  "deployments",
		Name:      deployment,
		Namespace: param(params, "namespace"),
	}), nil
}

func (t toolTable) scaleDeployment(ctx context.Context, params map[string]any) (ToolResult, error) {
	deployment, err := requireParam(params, "deployment_name", "name", "deployment")
	if err != nil {
		return ToolResult{}, err
	}
	replicas, ok := model.IntValue(params["replicas"])
	if !ok {
		return ToolResult{}, fmt.Errorf("%w %q", errMissingParameter, "replicas")
	}
	return t.run(ctx, model.Command{
		Domain:    model.DomainKubernetes,
		Action:    "scale",
		Resource:  "deployments",
		Name:      deployment,
		Namespace: param(params, "namespace"),
		Extra:     map[string]any{"replicas": replicas},
	}), nil
}

// restartVM - 전원 끄기 실패 시 켜기는 시도하지 않음
func (t toolTable) restartVM(ctx context.Context, params map[string]any) (ToolResult, error) {
	vm, err := requireParam(params, "vm_name", "name")
	if err != nil {
		return ToolResult{}, err
	}
	off := t.run(ctx, model.Command{Domain: model.DomainVMware, Action: "power_off", Name: vm})
	if off.Status != model.JobStatusSuccess {
		return off, nil
	}
	on := t.run(ctx, model.Command{Domain: model.DomainVMware, Action: "power_on", Name: vm})
	on.Output = off.Output + "\n" + on.Output
	return on, nil
}

func (t toolTable) vmPower(action string) ToolHandler {
	return func(ctx context.Context, params map[string]any) (ToolResult, error) {
		vm, err := requireParam(params, "vm_name", "name")
		if err != nil {
			return ToolResult{}, err
		}
		return t.run(ctx, model.Command{Domain: model.DomainVMware, Action: action, Name: vm}), nil
	}
}

func (t toolTable) createVM(ctx context.Context, params map[string]any) (ToolResult, error) {
	vm, err := requireParam(params, "vm_name", "name")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{
		Domain: model.DomainVMware,
		Action: "create",
		Name:   vm,
		Extra:  extra(params, "cpu", "memory", "datastore", "network"),
	}), nil
}

func (t toolTable) cloneVM(ctx context.Context, params map[string]any) (ToolResult, error) {
	template, err := requireParam(params, "template_name", "source_vm", "vm_name")
	if err != nil {
		return ToolResult{}, err
	}
	newName, err := requireParam(params, "new_name", "name")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{
		Domain: model.DomainVMware,
		Action: "clone",
		Extra:  map[string]any{"template_name": template, "new_name": newName},
	}), nil
}

func (t toolTable) createSnapshot(ctx context.Context, params map[string]any) (ToolResult, error) {
	vm, err := requireParam(params, "vm_name", "name")
	if err != nil {
		return ToolResult{}, err
	}
	ex := extra(params, "snapshot_name", "description")
	if _, ok := ex["snapshot_name"]; !ok {
		ex["snapshot_name"] = "auto-remediation"
	}
	return t.run(ctx, model.Command{
		Domain: model.DomainVMware,
		Action: "create_snapshot",
		Name:   vm,
		Extra:  ex,
	}), nil
}

func (t toolTable) queryPrometheus(ctx context.Context, params map[string]any) (ToolResult, error) {
	query, err := requireParam(params, "query", "promql")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{Domain: model.DomainPrometheus, Action: "query", Query: query}), nil
}

func (t toolTable) grafanaDashboard(ctx context.Context, params map[string]any) (ToolResult, error) {
	name, err := requireParam(params, "uid", "title", "name", "dashboard")
	if err != nil {
		return ToolResult{}, err
	}
	return t.run(ctx, model.Command{
		Domain:   model.DomainGrafana,
		Action:   "get",
		Resource: "dashboards",
		Name:     name,
	}), nil
}

func (t toolTable) scanNetwork(ctx context.Context, params map[string]any) (ToolResult, error) {
	return t.run(ctx, model.Command{
		Domain: model.DomainNetwork,
		Action: "scan",
		Extra:  extra(params, "subnet"),
	}), nil
}
