// Package main is the entry point for the calc command.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lemonberrylabs/calc/pkg/config"
	"github.com/lemonberrylabs/calc/pkg/logging"
	"github.com/lemonberrylabs/calc/pkg/session"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "calc [file]",
	Short: "Evaluate arithmetic expressions line by line",
	Long: `calc evaluates one arithmetic expression per line.

With no file it reads from standard input, prompting when attached to a
terminal. With a file it evaluates every line of the file, echoing each one.
Type "quit" to leave an interactive session.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSession,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("calc version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "YAML config file (env CALC_CONFIG)")
	rootCmd.PersistentFlags().Int("precision", 0, "Significant digits in printed results (default 6, env CALC_PRECISION)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env CALC_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file (env CALC_LOG_FILE)")
	rootCmd.Flags().String("prompt", "", "Prompt printed before each line (env CALC_PROMPT)")

	rootCmd.AddCommand(serveCmd, generateCmd, tokenizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves settings with precedence flag > env > file > default.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := envOrDefault("CALC_CONFIG", "")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("precision") {
		cfg.Precision, _ = cmd.Flags().GetInt("precision")
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
	if cmd.Flags().Changed("prompt") {
		cfg.Prompt, _ = cmd.Flags().GetString("prompt")
	}
	// Changed is false for flags the command does not define.
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.GRPCPort, _ = cmd.Flags().GetInt("grpc-port")
	}
	if cmd.Flags().Changed("history-limit") {
		cfg.HistoryLimit, _ = cmd.Flags().GetInt("history-limit")
	}

	return cfg, cfg.Validate()
}

// setup loads configuration and installs the process logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger, closer, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	in := cmd.InOrStdin()
	echo := false
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Problem with input file.")
			fmt.Fprintln(cmd.OutOrStdout(), "Please check file and try again.")
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
		echo = true
	} else if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		// piped input is not visible to the user, so show it
		echo = true
	}

	s := session.New(in, cmd.OutOrStdout(), session.Options{
		Prompt:    cfg.Prompt,
		Precision: cfg.Precision,
		Echo:      echo,
		Logger:    logger,
	})
	_, err = s.Run(cmd.Context())
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
