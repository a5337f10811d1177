package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calc/pkg/gen"
)

var generateCmd = &cobra.Command{
	Use:   "generate FILE",
	Short: "Write random expression lines to FILE (\"-\" for stdout)",
	Long: `generate writes random lines drawn from the calculator alphabet.
Most lines are malformed, which makes the output useful for exercising
every diagnostic. With --eval the file is then evaluated as a batch.

The file is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Int("count", 1000, "Number of lines to generate")
	generateCmd.Flags().Int64("seed", 0, "Random seed (default: current time)")
	generateCmd.Flags().Bool("eval", false, "Evaluate the generated file afterwards")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count < 0 {
		return fmt.Errorf("count must not be negative, got %d", count)
	}
	seed, _ := cmd.Flags().GetInt64("seed")
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	path := args[0]
	if path == "-" {
		return gen.Write(cmd.OutOrStdout(), count, rnd)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gen.Write(f, count, rnd); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if eval, _ := cmd.Flags().GetBool("eval"); eval {
		return runSession(cmd, args)
	}
	return nil
}
