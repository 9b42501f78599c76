package cli

import (
	"encoding/json"
	"fmt"

	"energy-agent/internal/models"

	"github.com/spf13/cobra"
)

var (
	recommendTemps          []float64
	recommendHistory        []float64
	recommendMaxTemp        float64
	recommendMinComfortTemp float64
	recommendLanguage       string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Produce one recommendation and print it as JSON",
	Example: `  energy-agent recommend --temps 25,20 --max-temp 22 --min-comfort-temp 18 --lang pt
  energy-agent recommend --config config.yaml --temps 19.5`,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().Float64SliceVar(&recommendTemps, "temps", nil, "Hourly weather forecast in degrees C (only the first value is compared)")
	recommendCmd.Flags().Float64SliceVar(&recommendHistory, "history", nil, "Hourly consumption in kWh, used when history.prefer_request is enabled")
	recommendCmd.Flags().Float64Var(&recommendMaxTemp, "max-temp", 22, "Maximum outside temperature before an adjustment is recommended")
	recommendCmd.Flags().Float64Var(&recommendMinComfortTemp, "min-comfort-temp", 18, "Target temperature suggested by an adjustment")
	recommendCmd.Flags().StringVarP(&recommendLanguage, "lang", "l", "en", "Justification language (en, es, pt)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	c, err := buildAgent(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	rec, err := c.agent.Run(cmd.Context(), models.OptimizationRequest{
		HistoricalConsumptionKWh: recommendHistory,
		WeatherForecastDegreesC:  recommendTemps,
		Limits: models.Limits{
			MaxTemp:        recommendMaxTemp,
			MinComfortTemp: recommendMinComfortTemp,
		},
		SelectedLanguage: recommendLanguage,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
