// 결정적 의도 감지기
//
// forcedDetectors 는 모든 모드에서 LLM 호출 전에 실행
// fallbackDetectors 는 chat-with-infra 모드에서 LLM 응답에 구조화된 호출이 없을 때만 실행
// 앞에서부터 처음 매칭된 감지기 하나만 사용

package agent

import (
	"fmt"
	"regexp"
	"strings"
)

type detector struct {
	name  string
	match func(input, lower, defaultSubnet string) (ToolCall, bool)
}

var forcedDetectors = []detector{
	{name: "grafana_dashboard", match: detectGrafanaDashboard},
	{name: "network_scan", match: detectNetworkScan},
	{name: "policy_list", match: detectPolicyList},
}

var fallbackDetectors = []detector{
	{name: "metrics_usage", match: detectMetricsUsage},
	{name: "pod_list", match: detectPodList},
	{name: "namespace_list", match: detectNamespaceList},
	{name: "grafana_datasources", match: detectGrafanaDatasources},
	{name: "vm_list", match: detectVMList},
}

func detect(detectors []detector, input, defaultSubnet string) (string, ToolCall, bool) {
	lower := strings.ToLower(input)
	for _, d := range detectors {
		if call, ok := d.match(input, lower, defaultSubnet); ok {
			return d.name, call, true
		}
	}
	return "", ToolCall{}, false
}

func infraCall(args map[string]any) ToolCall {
	return ToolCall{Name: ToolInfraCommand, Arguments: args}
}

var (
	dashboardUIDRe    = regexp.MustCompile(`(?i)\buid[:\s]+"?([a-zA-Z0-9]+)"?`)
	dashboardNamedRe  = regexp.MustCompile(`(?i)(?:dashboard|chart|panel|graph)\s+(?:named|called|titled?)\s+["']?([a-zA-Z][a-zA-Z0-9 \-_]*[a-zA-Z0-9])["']?`)
	dashboardQuotedRe = regexp.MustCompile(`(?i)(?:get|find|show|open)\s+(?:the\s+)?["']([^"']+)["']`)
	dashboardColonRe  = regexp.MustCompile(`(?i)(?:dashboard|chart|panel|graph):\s*([a-zA-Z][a-zA-Z0-9 \-_]*[a-zA-Z0-9])`)

	// 목록 요청을 나타내는 단어가 들어간 이름은 버림
	dashboardListWords = []string{"all", "from", "list", "show", "display", "every", "dashboards", "charts", "panels", "graphs"}
	dashboardArticles  = []string{"the ", "a ", "an ", "my ", "your ", "our ", "their "}
)

// detectGrafanaDashboard - "grafana" 와 "dashboard" 를 모두 언급하면 UID 조회, 이름 조회, 전체 목록 중 하나
func detectGrafanaDashboard(input, lower, _ string) (ToolCall, bool) {
	if !strings.Contains(lower, "grafana") || !strings.Contains(lower, "dashboard") {
		return ToolCall{}, false
	}

	if m := dashboardUIDRe.FindStringSubmatch(input); m != nil {
		return infraCall(map[string]any{
			"domain":   "grafana",
			"action":   "get",
			"resource": "dashboards",
			"name":     m[1],
		}), true
	}

	if name, ok := dashboardName(input); ok {
		return infraCall(map[string]any{
			"domain":   "grafana",
			"action":   "get",
			"resource": "dashboards",
			"name":     name,
			"query":    name,
		}), true
	}

	return infraCall(map[string]any{
		"domain":   "grafana",
		"action":   "list",
		"resource": "dashboards",
	}), true
}

func dashboardName(input string) (string, bool) {
	for _, re := range []*regexp.Regexp{dashboardNamedRe, dashboardQuotedRe, dashboardColonRe} {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		lower := strings.ToLower(name)
		if name == "" || containsWord(lower, dashboardListWords) || hasAnyPrefix(lower, dashboardArticles) {
			continue
		}
		return name, true
	}
	return "", false
}

var cidrRe = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{1,3}){3}(?:/\d{1,2})?)\b`)

// detectNetworkScan - scan/discover 와 network/subnet/cidr 를 함께 언급
func detectNetworkScan(input, lower, defaultSubnet string) (ToolCall, bool) {
	if !strings.Contains(lower, "scan") && !strings.Contains(lower, "discover") {
		return ToolCall{}, false
	}
	subnet := ""
	if m := cidrRe.FindStringSubmatch(input); m != nil {
		subnet = m[1]
	}
	if subnet == "" && !strings.Contains(lower, "network") && !strings.Contains(lower, "subnet") && !strings.Contains(lower, "cidr") {
		return ToolCall{}, false
	}
	if subnet == "" {
		subnet = defaultSubnet
	}
	args := map[string]any{}
	if subnet != "" {
		args["subnet"] = subnet
	}
	return ToolCall{Name: ToolNetworkDiscovery, Arguments: args}, true
}

func detectPolicyList(_, lower, _ string) (ToolCall, bool) {
	if !strings.Contains(lower, "polic") {
		return ToolCall{}, false
	}
	return ToolCall{Name: ToolGetPolicies, Arguments: map[string]any{}}, true
}

var containerRe = regexp.MustCompile(`(?i)(?:cpu|memory)\s+(?:usage\s+)?(?:of|for|from)\s+([a-zA-Z0-9\-_.]+)`)

// detectMetricsUsage - cpu/memory 사용량을 Prometheus 쿼리로
func detectMetricsUsage(input, lower, _ string) (ToolCall, bool) {
	cpu := strings.Contains(lower, "cpu")
	if !cpu && !strings.Contains(lower, "memory") {
		return ToolCall{}, false
	}

	container := ""
	if m := containerRe.FindStringSubmatch(input); m != nil {
		container = m[1]
	}

	var query string
	switch {
	case cpu && container != "":
		query = fmt.Sprintf(`rate(container_cpu_usage_seconds_total{container="%s"}[5m])`, container)
	case cpu:
		query = "rate(container_cpu_usage_seconds_total[5m])"
	case container != "":
		query = fmt.Sprintf(`container_memory_usage_bytes{container="%s"}`, container)
	default:
		query = "container_memory_usage_bytes"
	}
	return infraCall(map[string]any{
		"domain": "prometheus",
		"action": "query",
		"query":  query,
	}), true
}

var (
	namespaceAfterRe  = regexp.MustCompile(`(?i)namespaces?(?:\s+called)?\s+([a-zA-Z0-9\-_]+)`)
	namespaceBeforeRe = regexp.MustCompile(`(?i)([a-zA-Z0-9\-_]+)\s+namespaces?\b`)
)

var namespaceStopWords = []string{"all", "the", "a", "any", "every", "each", "which", "what"}

func wantsListing(lower string) bool {
	return strings.Contains(lower, "list") || strings.Contains(lower, "show") || strings.Contains(lower, "get")
}

func detectPodList(input, lower, _ string) (ToolCall, bool) {
	if !strings.Contains(lower, "pod") || !wantsListing(lower) {
		return ToolCall{}, false
	}
	args := map[string]any{
		"domain":   "kubernetes",
		"action":   "list",
		"resource": "pods",
	}
	for _, re := range []*regexp.Regexp{namespaceAfterRe, namespaceBeforeRe} {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		ns := strings.ToLower(m[1])
		if containsWord(ns, namespaceStopWords) || ns == "in" {
			continue
		}
		args["namespace"] = m[1]
		break
	}
	return infraCall(args), true
}

func detectNamespaceList(_, lower, _ string) (ToolCall, bool) {
	if !strings.Contains(lower, "namespace") || !wantsListing(lower) {
		return ToolCall{}, false
	}
	return infraCall(map[string]any{
		"domain":   "kubernetes",
		"action":   "list",
		"resource": "namespaces",
	}), true
}

func detectGrafanaDatasources(_, lower, _ string) (ToolCall, bool) {
	if !strings.Contains(lower, "datasource") || !strings.Contains(lower, "grafana") {
		return ToolCall{}, false
	}
	return infraCall(map[string]any{
		"domain":   "grafana",
		"action":   "list",
		"resource": "datasources",
	}), true
}

var vmWordRe = regexp.MustCompile(`\bvms?\b`)

func detectVMList(_, lower, _ string) (ToolCall, bool) {
	if !vmWordRe.MatchString(lower) {
		return ToolCall{}, false
	}
	if !strings.Contains(lower, "list") && !strings.Contains(lower, "show") {
		return ToolCall{}, false
	}
	return infraCall(map[string]any{
		"domain":   "vmware",
		"action":   "list",
		"resource": "vms",
	}), true
}

// containsWord - 공백 기준 단어 일치
func containsWord(s string, words []string) bool {
	for _, field := range strings.Fields(s) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
