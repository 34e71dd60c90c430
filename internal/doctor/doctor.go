// Package doctor runs readiness diagnostics for config, policy, the analysis service, and engines.
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/policy"
)

const healthTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config/policy/service/engine checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	checks = append(checks, checkPolicy(cfg.Config.Form.Policy))
	checks = append(checks, checkService(ctx, cfg.Config.Service.URL))
	checks = append(checks, checkEngine(cfg.Config))

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	if n := len(cfg.Warnings); n > 0 && cfg.Exists {
		message += fmt.Sprintf(" (%d warning(s))", n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

func checkPolicy(name string) Check {
	p, err := policy.Lookup(name)
	if err != nil {
		return Check{Name: "form.policy", Pass: false, Message: err.Error()}
	}
	return Check{Name: "form.policy", Pass: true, Message: fmt.Sprintf("%s (%s)", p.Name(), p.Requirement())}
}

// checkService probes GET /healthz on the configured analysis service.
func checkService(ctx context.Context, baseURL string) Check {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Check{Name: "service.health", Pass: false, Message: "service.url is empty"}
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	client := analysis.NewClient(base)
	if err := client.Health(probeCtx); err != nil {
		return Check{Name: "service.health", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	return Check{Name: "service.health", Pass: true, Message: fmt.Sprintf("ready at %s", client.BaseURL())}
}

// checkEngine verifies the selected serve engine has credentials.
func checkEngine(cfg config.Config) Check {
	engine := strings.ToLower(strings.TrimSpace(cfg.Server.Engine))
	name := "engine." + engine
	switch engine {
	case config.EngineOpenAI:
		return checkCredential(name, cfg.LLM.APIKey, config.EnvLlamaAPIKey, cfg.LLM.Model)
	case config.EngineGemini:
		return checkCredential(name, cfg.Gemini.APIKey, config.EnvGeminiAPIKey, cfg.Gemini.Model)
	default:
		return Check{Name: "engine", Pass: false, Message: fmt.Sprintf("unknown engine %q", cfg.Server.Engine)}
	}
}

func checkCredential(name, key, envName, model string) Check {
	if strings.TrimSpace(key) == "" {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("api key missing; set %s", envName)}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("api key set (model %s)", model)}
}
