package router

import (
	"context"
	"fmt"

	"github.com/infraai/backend/internal/model"
)

const vmwareUnsupportedInfo = "Error: VMware MCP server does not support detailed VM info/status operations. " +
	"Available operations: list, create, clone, power_on, power_off, delete, get_stats, snapshots, create_snapshot."

func (r *Router) registerVMware() {
	v := model.DomainVMware
	name := required(str("name", "name"))

	r.add(v, "list", r.vmwareTool("listVMs"))
	r.add(v, "create", r.vmwareTool("createVM"),
		name,
		withDefault(integer("cpu", "cpu"), 2),
		withDefault(integer("memory", "memory"), 4096),
		str("datastore", "datastore"),
		str("network", "network"),
	)
	r.add(v, "clone", r.vmwareClone)
	r.add(v, "delete", r.vmwareTool("deleteVM"), name)
	r.add(v, "power_on", r.vmwareTool("powerOn"), name)
	r.add(v, "power_off", r.vmwareTool("powerOff"), name)
	r.add(v, "get_stats", r.vmwareStats, name)
	r.add(v, "snapshots", r.vmwareTool("get_vm_snapshots"), required(str("name", "vm_name")))
	r.add(v, "create_snapshot", r.vmwareTool("create_snapshot"),
		required(str("name", "vm_name")),
		required(str("snapshot_name", "snapshot_name")),
		str("description", "description"),
	)

	// 상세 조회는 백엔드에 대응 기능이 없음, 호출하지 않고 안내 메시지 반환
	for _, action := range []string{"get", "status", "info"} {
		r.add(v, action, func(context.Context, model.Command, map[string]any) string {
			return vmwareUnsupportedInfo
		})
	}
}

func (r *Router) vmwareTool(tool string) handlerFunc {
	return func(ctx context.Context, _ model.Command, args map[string]any) string {
		c, err := r.registry.Acquire(ctx, model.DomainVMware)
		if err != nil {
			return r.acquireFailed(model.DomainVMware, err)
		}
		return r.render(model.DomainVMware, c.CallTool(ctx, tool, args))
	}
}

func (r *Router) vmwareClone(ctx context.Context, cmd model.Command, _ map[string]any) string {
	template := firstNonEmpty(cmd.String("template_name"), cmd.Name)
	newName := firstNonEmpty(cmd.String("new_name"), cmd.String("target_name"))
	if template == "" {
		return "Error: Missing required parameter 'template_name' for VMware clone"
	}
	if newName == "" {
		return "Error: Missing required parameter 'new_name' for VMware clone"
	}
	return r.vmwareTool("cloneVM")(ctx, cmd, map[string]any{"template_name": template, "new_name": newName})
}

// vmwareStats - resources/read vmstats://{name}
func (r *Router) vmwareStats(ctx context.Context, _ model.Command, args map[string]any) string {
	c, err := r.registry.Acquire(ctx, model.DomainVMware)
	if err != nil {
		return r.acquireFailed(model.DomainVMware, err)
	}
	res := c.Call(ctx, "resources/read", map[string]any{"uri": fmt.Sprintf("vmstats://%s", args["name"])})
	if result, ok := res["result"].(map[string]any); ok {
		if contents, ok := result["contents"].([]any); ok && len(contents) > 0 {
			if first, ok := contents[0].(map[string]any); ok {
				if text, ok := first["text"].(string); ok {
					return text
				}
			}
		}
	}
	return r.render(model.DomainVMware, res)
}
