package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrometheusVector(t *testing.T) {
	engine := New(Options{})
	raw := `{"jsonrpc":"2.0","id":1,"result":{"resultType":"vector","result":[
		{"metric":{"pod":"web-1","container":"nginx"},"value":[1700000000,"0.25"]},
		{"metric":{"pod":"web-2","container":"nginx"},"value":[1700000000,"0.5"]}
	]}}`

	got := engine.format(context.Background(), raw)
	assert.Equal(t, "Prometheus query returned 2 results:\n"+
		` 1. {container="nginx", pod="web-1"}: 0.25`+"\n"+
		` 2. {container="nginx", pod="web-2"}: 0.5`, got)
}

func TestFormatPrometheusMatrix(t *testing.T) {
	engine := New(Options{})
	raw := `{"jsonrpc":"2.0","result":{"resultType":"matrix","result":[{"metric":{"job":"node"},"values":[[1,"1"],[2,"2"]]}]}}`

	got := engine.format(context.Background(), raw)
	assert.Equal(t, "Prometheus range query returned 1 series:\n"+` 1. {job="node"}: 2 samples`, got)
}

func TestFormatDashboardsInsideMCPEnvelope(t *testing.T) {
	engine := New(Options{})
	raw := `{"result":{"content":[{"type":"text","text":"[{\"title\":\"CoreDNS\",\"uid\":\"vkQ0UHxik\"}]"}]}}`

	got := engine.format(context.Background(), raw)
	assert.Equal(t, "Found 1 dashboards:\n 1. CoreDNS (UID: vkQ0UHxik) - Folder: General", got)
}

func TestFormatFallsBackWhenCompleterFails(t *testing.T) {
	engine := New(Options{Completer: &scriptedCompleter{err: errors.New("timeout")}})

	assert.Equal(t, "Found 2 items:\n 1. alpha\n 2. beta", engine.format(context.Background(), `["alpha","beta"]`))
	assert.Equal(t, "Operation completed successfully. Retrieved 11 characters of data.", engine.format(context.Background(), `{"ok":true}`))
}

func TestFormatPassesErrorsThrough(t *testing.T) {
	engine := New(Options{Completer: &scriptedCompleter{responses: []string{"should not be used"}}})

	got := engine.format(context.Background(), "Command not supported: {\"domain\":\"docker\"}")
	assert.Equal(t, "Command not supported: {\"domain\":\"docker\"}", got)
}
