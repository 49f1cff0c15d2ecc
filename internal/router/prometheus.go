package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/infraai/backend/internal/model"
)

func (r *Router) registerPrometheus() {
	p := model.DomainPrometheus

	r.add(p, "query", r.promTool("execute_query"), required(str("query", "query")), str("time", "time"))
	r.add(p, "range_query", r.promTool("execute_range_query"),
		required(str("query", "query")),
		required(str("start", "start")),
		required(str("end", "end")),
		required(str("step", "step")),
	)
	r.add(p, "health", r.promTool("health_check"))
	r.add(p, "list_metrics", r.promTool("list_metrics"),
		integer("limit", "limit"),
		integer("offset", "offset"),
		str("filter_pattern", "filter_pattern"),
	)
	r.add(p, "metadata", r.promTool("get_metric_metadata"), required(str("name", "metric")))
	r.add(p, "targets", r.promTool("get_targets"))

	r.fallbacks[p] = r.promPassthrough
}

func (r *Router) promTool(tool string) handlerFunc {
	return func(ctx context.Context, _ model.Command, args map[string]any) string {
		c, err := r.registry.Acquire(ctx, model.DomainPrometheus)
		if err != nil {
			return r.acquireFailed(model.DomainPrometheus, err)
		}
		return r.render(model.DomainPrometheus, r.promTools.ExecuteTool(ctx, c, tool, args))
	}
}

// promPassthrough - 테이블에 없는 action 은 capability 테이블에 있을 때만 그대로 호출
func (r *Router) promPassthrough(ctx context.Context, cmd model.Command) (string, bool) {
	if !r.promTools.Has(cmd.Action) {
		return fmt.Sprintf("Error: Unsupported Prometheus action: %s. Available actions: [%s]",
			cmd.Action, strings.Join(r.promTools.Names(), ", ")), true
	}

	args := map[string]any{}
	for k, v := range cmd.Extra {
		args[k] = v
	}
	if cmd.Query != "" {
		args["query"] = cmd.Query
	}
	if cmd.Name != "" {
		args["name"] = cmd.Name
	}
	return r.promTool(cmd.Action)(ctx, cmd, args), true
}
