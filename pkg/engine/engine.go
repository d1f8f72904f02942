// Package engine wires the chart upstream client and the model adapter from
// configuration and hands out interactive sessions.
package engine

import (
	"net/http"

	"github.com/x1001000/mm-chart-view/pkg/analyst"
	"github.com/x1001000/mm-chart-view/pkg/macromicro"
	"github.com/x1001000/mm-chart-view/pkg/modeladapter"
	"github.com/x1001000/mm-chart-view/pkg/providers/gemini"
)

// Engine holds the constructed dependencies of the application.
type Engine struct {
	cfg       Config
	client    *macromicro.Client
	completer modeladapter.Completer
}

// New validates the config and constructs the upstream client and the Gemini
// adapter.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	client := macromicro.NewClient(cfg.ProxyURL)
	client.DataBaseURL = cfg.DataBaseURL
	client.CDNBaseURL = cfg.CDNBaseURL
	client.HTTPClient = &http.Client{Timeout: cfg.FetchTimeout()}

	return &Engine{
		cfg:       cfg,
		client:    client,
		completer: gemini.New(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model),
	}, nil
}

// Completer returns the configured model adapter.
func (e *Engine) Completer() modeladapter.Completer { return e.completer }

// Client returns the upstream chart client.
func (e *Engine) Client() *macromicro.Client { return e.client }

// NewSession creates a fresh interactive session in the empty state.
func (e *Engine) NewSession() *Session {
	return newSession(e.client, analyst.New(e.completer))
}
