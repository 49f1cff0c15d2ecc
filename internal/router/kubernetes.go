package router

import (
	"context"

	"github.com/infraai/backend/internal/model"
)

const defaultExecCommand = "echo 'Hello from pod'"

func (r *Router) registerKubernetes() {
	k := model.DomainKubernetes
	name := required(str("name", "name"))

	r.add(k, "list", r.kubeTool("kubectl_get"), required(resource("resourceType")), namespace(), str("label_selector", "labelSelector"))
	r.add(k, "get", r.kubeTool("kubectl_get"), required(resource("resourceType")), str("name", "name"), namespace(), str("output", "output"))
	r.add(k, "describe", r.kubeTool("kubectl_describe"), required(resource("resourceType")), name, namespace())
	r.add(k, "delete", r.kubeTool("kubectl_delete"), required(resource("resourceType")), name, namespace())
	r.add(k, "scale", r.kubeTool("kubectl_scale"),
		name,
		withDefault(integer("replicas", "replicas"), 1),
		withDefault(resource("resourceType"), "deployments"),
		namespace(),
	)
	r.add(k, "restart", r.kubeTool("kubectl_rollout"),
		fixed("subCommand", "restart"),
		withDefault(resource("resourceType"), "deployments"),
		name,
		namespace(),
	)
	r.add(k, "rollout", r.kubeTool("kubectl_rollout"),
		withDefault(str("sub_command", "subCommand"), "status"),
		withDefault(resource("resourceType"), "deployments"),
		name,
		namespace(),
	)
	r.add(k, "logs", r.kubeTool("kubectl_logs"),
		withDefault(resource("resourceType"), "pod"),
		name,
		namespace(),
		str("container", "container"),
		integer("tail", "tail"),
	)
	r.add(k, "exec", r.kubeTool("exec_in_pod"),
		name,
		withDefault(str("command", "command"), defaultExecCommand),
		str("container", "container"),
		namespace(),
	)
	r.add(k, "create", r.kubeTool("kubectl_create"), str("manifest", "manifest"), str("filename", "filename"), namespace())
	r.add(k, "apply", r.kubeTool("kubectl_apply"), str("manifest", "manifest"), str("filename", "filename"), namespace())
	r.add(k, "patch", r.kubeTool("kubectl_patch"),
		required(resource("resourceType")),
		name,
		namespace(),
		raw("patch_data", "patchData"),
		str("patch_type", "patchType"),
	)
	r.add(k, "context", r.kubeTool("kubectl_context"), withDefault(str("operation", "operation"), "list"), str("name", "name"))
	r.add(k, "generic", r.kubeTool("kubectl_generic"), required(str("command", "command")))
	r.add(k, "node_management", r.kubeTool("node_management"), withDefault(str("operation", "operation"), "list"), str("name", "nodeName"))
	r.add(k, "install_helm", r.kubeTool("install_helm_chart"),
		name,
		required(str("chart", "chart")),
		str("repo", "repo"),
		raw("values", "values"),
		namespace(),
	)
	r.add(k, "upgrade_helm", r.kubeTool("upgrade_helm_chart"),
		name,
		required(str("chart", "chart")),
		str("repo", "repo"),
		raw("values", "values"),
		namespace(),
	)
	r.add(k, "uninstall_helm", r.kubeTool("uninstall_helm_chart"), name, namespace())
	r.add(k, "explain", r.kubeTool("explain_resource"),
		required(str("name", "resource")),
		str("api_version", "apiVersion"),
		boolean("recursive", "recursive"),
	)
	r.add(k, "list_api_resources", r.kubeTool("list_api_resources"), str("api_group", "apiGroup"), boolean("namespaced", "namespaced"))
	r.add(k, "ping", r.kubeTool("ping"))
}

// kubeTool - 매 호출 전에 /health 생존 확인을 거친 뒤 tools/call
func (r *Router) kubeTool(tool string) handlerFunc {
	return func(ctx context.Context, _ model.Command, args map[string]any) string {
		c, err := r.registry.AcquireChecked(ctx, model.DomainKubernetes)
		if err != nil {
			return r.acquireFailed(model.DomainKubernetes, err)
		}
		return r.render(model.DomainKubernetes, c.CallTool(ctx, tool, args))
	}
}
