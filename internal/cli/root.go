package cli

import (
	"os"
	"strings"

	"energy-agent/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logger     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "energy-agent",
	Short: "HVAC energy optimization agent",
	Long: `energy-agent forecasts hourly building consumption from historical data,
decides whether an HVAC adjustment is worthwhile and explains the decision
in the caller's language.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./config.yaml or ./config/config.yaml)")
}

// loadConfig reads the configuration and applies its log settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, err
	}
	setupLogger(logger, cfg.Log)
	return cfg, nil
}

func setupLogger(l *logrus.Logger, cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		l.Warnf("Unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
