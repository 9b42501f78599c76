package cli

import (
	"context"

	"energy-agent/internal/agent"
	"energy-agent/internal/config"
	"energy-agent/internal/decision"
	"energy-agent/internal/history"
	"energy-agent/internal/justify"
)

type components struct {
	agent    *agent.Agent
	snapshot *history.Snapshot
	catalog  *justify.Catalog
}

// buildAgent assembles the recommendation pipeline from cfg. A dataset that
// cannot be read yet is only a warning: requests report it until it appears.
func buildAgent(ctx context.Context, cfg *config.Config) (*components, error) {
	loader, err := history.NewLoader(cfg.History, logger)
	if err != nil {
		return nil, err
	}

	snapshot := history.NewSnapshot(loader, logger)
	if err := snapshot.Refresh(ctx); err != nil {
		logger.Warnf("History: initial load of %s failed: %v", cfg.History.Path, err)
	}

	catalog := justify.NewCatalog(cfg.Justification.Languages)
	justifier, err := justify.New(cfg.Justification, catalog, logger)
	if err != nil {
		return nil, err
	}

	a := agent.New(
		snapshot,
		decision.NewEngine(cfg.Optimization.DemoSavingsKWh),
		justifier,
		logger,
		agent.WithRequestHistory(cfg.History.PreferRequest),
	)

	return &components{agent: a, snapshot: snapshot, catalog: catalog}, nil
}
