// Package config loads SnapScout settings from the environment, an optional
// .env file and an optional YAML agents file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	"github.com/koscakluka/snapscout/core/agents"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 3000
	defaultFallbackAgent = "genie"
	defaultAgentTimeout  = 30 * time.Second
)

// Config holds the settings shared by the server and the console.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr           string
	Debug          bool
	AllowedOrigins []string

	Agents []AgentConfig
	// FallbackAgent receives utterances when no agent is active. Empty
	// disables the fallback.
	FallbackAgent string
	AgentTimeout  time.Duration
	// AnnounceStopped is either "previous" or "current".
	AnnounceStopped string

	Deepgram DeepgramConfig
}

// AgentConfig describes one HTTP agent.
type AgentConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type DeepgramConfig struct {
	APIKey string
	Voice  string
}

// agentsFile is the layout of SNAPSCOUT_AGENTS_FILE.
type agentsFile struct {
	Fallback *string       `yaml:"fallback"`
	Agents   []AgentConfig `yaml:"agents"`
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr            *string
	AgentsFile      *string
	FallbackAgent   *string
	AnnounceStopped *string
	DeepgramVoice   *string
	Debug           *bool
}

// Load reads .env from the working directory when present, then the
// environment, then the agents file, and finally applies overrides.
// Agents named by MAGENTA_URL and GENIE_URL replace file entries of the same
// name.
func Load(overrides Overrides) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Addr:            fmt.Sprintf(":%d", defaultPort),
		FallbackAgent:   getEnv("SNAPSCOUT_FALLBACK_AGENT", defaultFallbackAgent),
		AgentTimeout:    defaultAgentTimeout,
		AnnounceStopped: getEnv("SNAPSCOUT_ANNOUNCE_STOPPED", "previous"),
		AllowedOrigins:  []string{"*"},
		Deepgram: DeepgramConfig{
			APIKey: os.Getenv("DEEPGRAM_API_KEY"),
			Voice:  os.Getenv("DEEPGRAM_VOICE"),
		},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", portStr)
		}
		cfg.Addr = fmt.Sprintf(":%d", port)
	}

	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		cfg.Debug = true
	}

	if timeoutStr := os.Getenv("SNAPSCOUT_AGENT_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SNAPSCOUT_AGENT_TIMEOUT: %w", err)
		}
		cfg.AgentTimeout = timeout
	}

	if origins := os.Getenv("SNAPSCOUT_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	agentsPath := os.Getenv("SNAPSCOUT_AGENTS_FILE")
	if overrides.AgentsFile != nil {
		agentsPath = *overrides.AgentsFile
	}
	if agentsPath != "" {
		file, err := loadAgentsFile(agentsPath)
		if err != nil {
			return nil, err
		}
		cfg.Agents = file.Agents
		if file.Fallback != nil && os.Getenv("SNAPSCOUT_FALLBACK_AGENT") == "" {
			cfg.FallbackAgent = *file.Fallback
		}
	}

	for _, name := range []string{"magenta", "genie"} {
		prefix := strings.ToUpper(name)
		if url := os.Getenv(prefix + "_URL"); url != "" {
			cfg.setAgent(AgentConfig{Name: name, URL: url, Token: os.Getenv(prefix + "_TOKEN")})
		}
	}

	if overrides.Addr != nil {
		cfg.Addr = *overrides.Addr
	}
	if overrides.FallbackAgent != nil {
		cfg.FallbackAgent = *overrides.FallbackAgent
	}
	if overrides.AnnounceStopped != nil {
		cfg.AnnounceStopped = *overrides.AnnounceStopped
	}
	if overrides.DeepgramVoice != nil {
		cfg.Deepgram.Voice = *overrides.DeepgramVoice
	}
	if overrides.Debug != nil {
		cfg.Debug = *overrides.Debug
	}

	cfg.normaliseAgentNames()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normaliseAgentNames lowercases agent names. Recognised speech is
// lowercased before agent names are matched, so the registry must use the
// same form.
func (c *Config) normaliseAgentNames() {
	for i := range c.Agents {
		c.Agents[i].Name = strings.ToLower(strings.TrimSpace(c.Agents[i].Name))
	}
	c.FallbackAgent = strings.ToLower(strings.TrimSpace(c.FallbackAgent))
}

func (c *Config) validate() error {
	switch c.AnnounceStopped {
	case "previous", "current":
	default:
		return fmt.Errorf("invalid SNAPSCOUT_ANNOUNCE_STOPPED %q: want previous or current", c.AnnounceStopped)
	}

	seen := map[string]bool{}
	for _, agent := range c.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agent with url %q has no name", agent.URL)
		}
		if agent.URL == "" {
			return fmt.Errorf("agent %q has no url", agent.Name)
		}
		if seen[agent.Name] {
			return fmt.Errorf("agent %q is configured twice", agent.Name)
		}
		seen[agent.Name] = true
	}
	return nil
}

// setAgent replaces the agent with the same name or appends it.
func (c *Config) setAgent(agent AgentConfig) {
	for i := range c.Agents {
		if strings.EqualFold(strings.TrimSpace(c.Agents[i].Name), agent.Name) {
			c.Agents[i] = agent
			return
		}
	}
	c.Agents = append(c.Agents, agent)
}

// AgentEndpoints converts the configured agents into client endpoints.
// Agents without their own timeout get AgentTimeout.
func (c *Config) AgentEndpoints() ([]agents.Endpoint, error) {
	if len(c.Agents) == 0 {
		return nil, nil
	}

	var endpoints []agents.Endpoint
	if err := copier.Copy(&endpoints, &c.Agents); err != nil {
		return nil, fmt.Errorf("failed to convert agent config: %w", err)
	}
	for i := range endpoints {
		if endpoints[i].Timeout == 0 {
			endpoints[i].Timeout = c.AgentTimeout
		}
	}
	return endpoints, nil
}

// NewRegistry builds the agent registry described by the configuration.
func (c *Config) NewRegistry() (*agents.Registry, error) {
	endpoints, err := c.AgentEndpoints()
	if err != nil {
		return nil, err
	}
	return agents.NewRegistryFromEndpoints(endpoints, agents.WithFallback(c.FallbackAgent))
}

func loadAgentsFile(path string) (agentsFile, error) {
	var file agentsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read agents file: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse agents file %s: %w", path, err)
	}
	return file, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
