package justify

import (
	"fmt"
	"time"

	"energy-agent/internal/config"

	"github.com/sirupsen/logrus"
)

type Mode string

const (
	TemplateMode   Mode = "template"
	GenerativeMode Mode = "generative"
)

// New builds the justifier selected by cfg.Mode. Generative mode without an
// API key degrades to the template justifier with a warning.
func New(cfg config.JustificationConfig, catalog *Catalog, logger *logrus.Logger) (Justifier, error) {
	template := NewTemplateJustifier(catalog)

	switch Mode(cfg.Mode) {
	case TemplateMode, "":
		if cfg.APIKey == "" {
			logger.Warn("Justification: no API key configured, generative justifications unavailable")
		}
		return template, nil

	case GenerativeMode:
		if cfg.APIKey == "" {
			logger.Warn("Justification: no API key configured, using template justifications")
			return template, nil
		}
		timeout := time.Duration(cfg.Timeout) * time.Second
		logger.Infof("Justification: generative mode with model %s", cfg.Model)
		return NewGenerativeJustifier(NewOpenAICompleter(cfg), template, timeout, logger), nil

	default:
		return nil, fmt.Errorf("unknown justification mode: %s", cfg.Mode)
	}
}
