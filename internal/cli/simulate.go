package cli

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"energy-agent/internal/models"
	"energy-agent/internal/simulate"

	"github.com/spf13/cobra"
)

var (
	simulateDays int
	simulateOut  string
	simulateSeed uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic hourly consumption dataset",
	Long: `Generate hourly consumption and temperature rows for the given number of
days, ending now, and write them as CSV in the layout the history loader reads.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&simulateDays, "days", "d", 30, "Number of days to generate")
	simulateCmd.Flags().StringVarP(&simulateOut, "out", "o", "simulated_energy_data.csv", "Output CSV path")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 0, "Random seed (0 = time based)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", simulateDays)
	}

	seed := simulateSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	start := simulationStart(time.Now(), simulateDays)
	records := simulate.Generate(simulateDays, start, simulate.DefaultParams(), rng)

	if err := writeDataset(simulateOut, records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d hourly rows to %s\n", len(records), simulateOut)
	return nil
}

// simulationStart is days before now, in UTC and on the hour, so that no two
// rows share a timestamp across a daylight saving change.
func simulationStart(now time.Time, days int) time.Time {
	return now.UTC().Truncate(time.Hour).Add(-time.Duration(days) * 24 * time.Hour)
}

func writeDataset(path string, records []models.HistoricalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := simulate.WriteCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
