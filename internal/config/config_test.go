package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "remediation_queue", cfg.Redis.QueueKey)
	assert.Equal(t, time.Second, cfg.Worker.PopTimeout)
	assert.Equal(t, "192.168.1.0/24", cfg.Scan.DefaultSubnet)
	assert.Contains(t, cfg.Scan.Ports, 6443)
	assert.Equal(t, 30*time.Second, cfg.MCP.CallTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("REMEDIATION_QUEUE", "custom_queue")
	t.Setenv("SCAN_PORTS", "22,80")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "custom_queue", cfg.Redis.QueueKey)
	assert.Equal(t, []int{22, 80}, cfg.Scan.Ports)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsSubSecondPopTimeout(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("WORKER_POP_TIMEOUT", "500ms")

	_, err := Load()
	assert.ErrorContains(t, err, "WORKER_POP_TIMEOUT")

	t.Setenv("WORKER_POP_TIMEOUT", "2s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Worker.PopTimeout)
}
