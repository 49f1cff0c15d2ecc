package router

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/infraai/backend/internal/model"
)

func (r *Router) registerNetwork() {
	r.add(model.DomainNetwork, "scan", r.networkScan)
}

func (r *Router) networkScan(ctx context.Context, cmd model.Command, _ map[string]any) string {
	if r.scanner == nil {
		return "Error: network scanner is not configured"
	}
	subnet := firstNonEmpty(cmd.String("subnet"), cmd.String("target"), cmd.Name, r.defaultSubnet)

	result, err := r.scanner.Scan(context.WithoutCancel(ctx), subnet)
	if err != nil {
		return fmt.Sprintf("Error executing command: %v", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("Error executing command: %v", err)
	}
	return string(data)
}
