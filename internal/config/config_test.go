package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DEBUG", "SNAPSCOUT_AGENTS_FILE", "SNAPSCOUT_FALLBACK_AGENT",
		"SNAPSCOUT_AGENT_TIMEOUT", "SNAPSCOUT_ALLOWED_ORIGINS", "SNAPSCOUT_ANNOUNCE_STOPPED",
		"MAGENTA_URL", "MAGENTA_TOKEN", "GENIE_URL", "GENIE_TOKEN",
		"DEEPGRAM_API_KEY", "DEEPGRAM_VOICE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeAgentsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write agents file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("expected :3000, got %q", cfg.Addr)
	}
	if cfg.FallbackAgent != "genie" {
		t.Fatalf("expected genie fallback, got %q", cfg.FallbackAgent)
	}
	if cfg.AgentTimeout != 30*time.Second {
		t.Fatalf("expected 30s agent timeout, got %v", cfg.AgentTimeout)
	}
	if cfg.AnnounceStopped != "previous" {
		t.Fatalf("expected previous agent announcement, got %q", cfg.AnnounceStopped)
	}
	if len(cfg.Agents) != 0 {
		t.Fatalf("expected no agents, got %v", cfg.Agents)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "1")
	t.Setenv("MAGENTA_URL", "http://magenta.local/text")
	t.Setenv("MAGENTA_TOKEN", "secret")
	t.Setenv("GENIE_URL", "http://genie.local/text")
	t.Setenv("SNAPSCOUT_AGENT_TIMEOUT", "5s")
	t.Setenv("SNAPSCOUT_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.Addr != ":8080" || !cfg.Debug {
		t.Fatalf("expected :8080 in debug mode, got %q debug=%t", cfg.Addr, cfg.Debug)
	}
	if len(cfg.Agents) != 2 || cfg.Agents[0].Name != "magenta" || cfg.Agents[1].Name != "genie" {
		t.Fatalf("expected magenta and genie, got %v", cfg.Agents)
	}
	if cfg.Agents[0].Token != "secret" {
		t.Fatalf("expected magenta token, got %q", cfg.Agents[0].Token)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("expected two origins, got %v", cfg.AllowedOrigins)
	}

	endpoints, err := cfg.AgentEndpoints()
	if err != nil {
		t.Fatalf("expected endpoints, got %v", err)
	}
	if len(endpoints) != 2 || endpoints[0].URL != "http://magenta.local/text" || endpoints[1].Timeout != 5*time.Second {
		t.Fatalf("unexpected endpoints %+v", endpoints)
	}
}

func TestLoadAgentsFile(t *testing.T) {
	clearEnv(t)
	path := writeAgentsFile(t, `
fallback: magenta
agents:
  - name: magenta
    url: http://magenta.local/text
    timeout: 2s
  - name: genie
    url: http://genie.local/text
`)
	t.Setenv("SNAPSCOUT_AGENTS_FILE", path)
	t.Setenv("GENIE_URL", "http://override.local/text")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.FallbackAgent != "magenta" {
		t.Fatalf("expected fallback from file, got %q", cfg.FallbackAgent)
	}
	if len(cfg.Agents) != 2 {
		t.Fatalf("expected two agents, got %v", cfg.Agents)
	}
	if cfg.Agents[0].Timeout != 2*time.Second {
		t.Fatalf("expected 2s timeout from file, got %v", cfg.Agents[0].Timeout)
	}
	if cfg.Agents[1].URL != "http://override.local/text" {
		t.Fatalf("expected environment to replace the genie url, got %q", cfg.Agents[1].URL)
	}

	registry, err := cfg.NewRegistry()
	if err != nil {
		t.Fatalf("expected registry, got %v", err)
	}
	if names := registry.Names(); !slices.Equal(names, []string{"genie", "magenta"}) {
		t.Fatalf("expected both agents registered, got %v", names)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSCOUT_ANNOUNCE_STOPPED", "current")

	addr := "127.0.0.1:9000"
	fallback := ""
	debug := true
	cfg, err := Load(Overrides{Addr: &addr, FallbackAgent: &fallback, Debug: &debug})
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.Addr != addr || cfg.FallbackAgent != "" || !cfg.Debug {
		t.Fatalf("expected overrides to apply, got %+v", cfg)
	}
	if cfg.AnnounceStopped != "current" {
		t.Fatalf("expected current agent announcement, got %q", cfg.AnnounceStopped)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "port", env: map[string]string{"PORT": "abc"}},
		{name: "timeout", env: map[string]string{"SNAPSCOUT_AGENT_TIMEOUT": "soon"}},
		{name: "announcement", env: map[string]string{"SNAPSCOUT_ANNOUNCE_STOPPED": "loudly"}},
		{name: "missing agents file", env: map[string]string{"SNAPSCOUT_AGENTS_FILE": filepath.Join(os.TempDir(), "does-not-exist.yaml")}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			if _, err := Load(Overrides{}); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadRejectsDuplicateAgents(t *testing.T) {
	clearEnv(t)
	path := writeAgentsFile(t, `
agents:
  - name: genie
    url: http://one.local
  - name: genie
    url: http://two.local
`)
	t.Setenv("SNAPSCOUT_AGENTS_FILE", path)

	if _, err := Load(Overrides{}); err == nil {
		t.Fatalf("expected duplicate agents to be rejected")
	}
}

func TestLoadLowercasesAgentNames(t *testing.T) {
	clearEnv(t)
	path := writeAgentsFile(t, `
fallback: Genie
agents:
  - name: Magenta
    url: http://magenta.local/text
  - name: " GENIE "
    url: http://genie.local/text
`)
	t.Setenv("SNAPSCOUT_AGENTS_FILE", path)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.FallbackAgent != "genie" {
		t.Fatalf("expected lowercase fallback, got %q", cfg.FallbackAgent)
	}

	registry, err := cfg.NewRegistry()
	if err != nil {
		t.Fatalf("expected registry, got %v", err)
	}
	if names := registry.Names(); !slices.Equal(names, []string{"genie", "magenta"}) {
		t.Fatalf("expected lowercase agent names, got %v", names)
	}
}

func TestLoadRejectsAgentsDifferingOnlyInCase(t *testing.T) {
	clearEnv(t)
	path := writeAgentsFile(t, `
agents:
  - name: Genie
    url: http://one.local
  - name: genie
    url: http://two.local
`)
	t.Setenv("SNAPSCOUT_AGENTS_FILE", path)

	if _, err := Load(Overrides{}); err == nil {
		t.Fatalf("expected agents differing only in case to be rejected")
	}
}
