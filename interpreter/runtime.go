package interpreter

import "sync"

type RuntimeConfig struct {
	// Entry is the function invoked with no arguments to start a run.
	Entry        string
	MaxCallDepth int
	LogExecution bool
	AllowNetwork bool
}

var (
	runtimeConfigMu sync.RWMutex
	runtimeConfig   = DefaultRuntimeConfig()
)

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Entry:        "main",
		MaxCallDepth: 10000,
		LogExecution: false,
		AllowNetwork: true,
	}
}

func SetRuntimeConfig(cfg RuntimeConfig) {
	runtimeConfigMu.Lock()
	defer runtimeConfigMu.Unlock()
	runtimeConfig = cfg
}

func GetRuntimeConfig() RuntimeConfig {
	runtimeConfigMu.RLock()
	defer runtimeConfigMu.RUnlock()
	return runtimeConfig
}

func (cfg RuntimeConfig) entry() string {
	if cfg.Entry == "" {
		return "main"
	}
	return cfg.Entry
}
