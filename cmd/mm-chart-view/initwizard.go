package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/x1001000/mm-chart-view/pkg/engine"
)

// Env var reference templates offered as defaults; expanded at load time,
// not stored as secrets.
//
//nolint:gosec
const (
	defaultProxyRef  = "${PROXY_URL}"
	defaultAPIKeyRef = "${GEMINI_API_KEY}"
)

// runInitWizard prompts for the configuration interactively and writes it to
// path. An existing file is never overwritten.
func runInitWizard(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; edit it directly or remove it first", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	proxyURL := defaultProxyRef
	apiKey := defaultAPIKeyRef
	model := engine.DefaultGeminiModel
	timeout := "10s"

	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Proxy base URL").
			Description("Prepended to chart-data requests. ${VAR} references are expanded from the environment at startup.").
			Value(&proxyURL),
		huh.NewInput().
			Title("Gemini API key").
			Description("Prefer an env var reference like ${GEMINI_API_KEY} over a literal key.").
			Value(&apiKey),
		huh.NewSelect[string]().
			Title("Gemini model").
			Options(
				huh.NewOption("gemini-3-flash-preview", "gemini-3-flash-preview"),
				huh.NewOption("gemini-2.5-flash", "gemini-2.5-flash"),
				huh.NewOption("gemini-2.5-pro", "gemini-2.5-pro"),
			).
			Value(&model),
		huh.NewInput().
			Title("Fetch timeout").
			Value(&timeout).
			Validate(validateDuration),
	)).Run()
	if err != nil {
		return err
	}

	cfg := engine.Config{
		ProxyURL: proxyURL,
		Timeout:  timeout,
		Gemini: engine.GeminiConfig{
			APIKey: apiKey,
			Model:  model,
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func validateDuration(s string) error {
	if s == "" {
		return nil
	}

	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a valid duration (e.g. 10s, 500ms)")
	}

	return nil
}
