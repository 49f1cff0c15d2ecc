package agent

import (
	"strings"

	"github.com/infraai/backend/internal/model"
)

const plainSystemPrompt = `You are a helpful AI assistant.

You can help users with:
- General questions and conversations
- Writing and editing text
- Problem solving and reasoning
- Learning and explanations

Be friendly, helpful, and concise.`

const infraSystemPrompt = `You are InfraAI, an intelligent infrastructure assistant.

You can help users with:
- Kubernetes operations (pods, deployments, services, helm charts)
- Prometheus monitoring queries
- Grafana dashboards and datasources
- VMware virtual machine management
- Network discovery

When the user asks for an infrastructure operation, answer with a single JSON object and nothing else:
{"tool_calls":[{"name":"infra_command","arguments":{"domain":"...","action":"...","resource":"...","name":"...","namespace":"...","query":"..."}}]}

Available domains: kubernetes, prometheus, grafana, vmware, network
Common actions: list, get, describe, delete, scale, restart, logs, query, create, power_on, power_off, scan

Examples:
User: list pods in kube-system
Assistant: {"tool_calls":[{"name":"infra_command","arguments":{"domain":"kubernetes","action":"list","resource":"pods","namespace":"kube-system"}}]}
User: what is the cpu usage of nginx
Assistant: {"tool_calls":[{"name":"infra_command","arguments":{"domain":"prometheus","action":"query","query":"rate(container_cpu_usage_seconds_total{container=\"nginx\"}[5m])"}}]}
User: scale web-app to 5 replicas
Assistant: {"tool_calls":[{"name":"infra_command","arguments":{"domain":"kubernetes","action":"scale","resource":"deployments","name":"web-app","replicas":5}}]}

Omit fields you do not need. For questions that are not operations, answer in plain text.`

// SystemPrompt - 모드별 지시문
func SystemPrompt(mode model.ChatMode) string {
	if mode == model.ChatModeInfra {
		return infraSystemPrompt
	}
	return plainSystemPrompt
}

// BuildPrompt - "<system>\n\n<history>User: <text>\n\nAssistant:"
func BuildPrompt(mode model.ChatMode, history []model.ChatMessage, input string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt(mode))
	b.WriteString("\n\n")
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString("User: ")
		case model.RoleAssistant, "ai":
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	b.WriteString("User: ")
	b.WriteString(input)
	b.WriteString("\n\nAssistant:")
	return b.String()
}

const formattingPrompt = `You are an infrastructure assistant. Format the following backend response in a clean, readable way.

RAW RESPONSE:
%s

FORMATTING INSTRUCTIONS:
- Parse any JSON content and present it as readable text.
- Present lists (pods, dashboards, VMs) as a plain text table inside a code block, with columns aligned using spaces.
- If a list is empty, say: "No items found."
- Give counts and a status breakdown after a table.
- Remove technical JSON artifacts and do not add a preamble.`
