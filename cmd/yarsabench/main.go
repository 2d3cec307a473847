// Package main is the entry point of yarsabench. It loads config.Bench from the
// environment (and .env), applies command-line overrides and measures textbook
// RSA and the selected baselines over every file given as an argument.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/YaCodeDev/GoYaRSABench/cmd/yarsabench/internal/runner"
	"github.com/YaCodeDev/GoYaRSABench/config"
	"github.com/YaCodeDev/GoYaRSABench/valueparser"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		batchSize int
		baselines string
		seed      string
		workers   int
		outputDir string
		cipherOut bool
	)

	cmd := &cobra.Command{
		Use:   "yarsabench [files...]",
		Short: "Measure byte-wise textbook RSA against standard ciphers",
		Long: `yarsabench encrypts and decrypts every given file one byte at a time with a
freshly generated small-modulus RSA key, batch by batch, and reports the time
and heap growth of every batch. The decrypted copy is written as
decrypted_<name> next to the input (or into --output-dir).

Settings are read from the environment and a .env file first (BATCH_SIZE,
BASELINES, SEED, WORKERS, LOG_LEVEL, REDIS_ADDR, SQLITE_PATH, ...); flags win.
Known baselines: ` + strings.Join(runner.Baselines, ", "),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Bench

			if err := config.LoadConfigStructFromEnvHandlingError(&cfg, nil); err != nil {
				return err
			}

			flags := cmd.Flags()

			if flags.Changed("batch-size") {
				cfg.BatchSize = batchSize
			}

			if flags.Changed("baselines") {
				parsed, err := valueparser.ParseArray[string](baselines)
				if err != nil {
					return err
				}

				cfg.Baselines = parsed
			}

			if flags.Changed("seed") {
				cfg.Seed = seed
			}

			if flags.Changed("workers") {
				cfg.Workers = workers
			}

			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}

			if flags.Changed("write-ciphertext") {
				cfg.WriteCiphertext = cipherOut
			}

			return run(cmd.Context(), &cfg, args)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "bytes per measured batch (BATCH_SIZE)")
	cmd.Flags().StringVar(&baselines, "baselines", "", "comma-separated baseline ciphers (BASELINES)")
	cmd.Flags().StringVar(&seed, "seed", "", "seed for reproducible keys (SEED)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers per batch, 0 for sequential (WORKERS)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for decrypted files (OUTPUT_DIR)")
	cmd.Flags().BoolVar(&cipherOut, "write-ciphertext", false, "also write <name>.cipher.txt (WRITE_CIPHERTEXT)")

	return cmd
}

func run(ctx context.Context, cfg *config.Bench, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	runID := uuid.New()

	log := yalogger.NewBaseLogger(&yalogger.Config{
		Level:         cfg.LogLevel,
		FullTimestamp: true,
	}).NewLogger().WithRunUUID(runID)

	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid configuration: %v", err)

		return err
	}

	sinks, err := runner.OpenSinks(ctx, cfg, log)
	if err != nil {
		log.Errorf("Failed to open telemetry sinks: %v", err)

		return err
	}
	defer sinks.Close()

	bench, err := runner.New(cfg, sinks.Collector, runID.String(), log)
	if err != nil {
		return err
	}

	log.Infof("Run %s: %d file(s), batch size %d", bench.RunID(), len(paths), cfg.BatchSize)

	reports, err := bench.RunFiles(ctx, paths)
	if err != nil {
		log.Errorf("Run %s failed: %v", bench.RunID(), err)

		return err
	}

	for _, report := range reports {
		fmt.Fprintf(os.Stdout, "%s\t%d bytes\tencrypt %s\tdecrypt %s\t-> %s\n",
			report.Path, report.Bytes, report.Encrypt.Elapsed, report.Decrypt.Elapsed, report.DecryptedPath)

		for _, baseline := range report.Baselines {
			fmt.Fprintf(os.Stdout, "\t%s\tencrypt %s\tdecrypt %s\n",
				baseline.Cipher, baseline.Encrypt.Elapsed, baseline.Decrypt.Elapsed)
		}
	}

	return nil
}
