// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/qamatch"
	"github.com/poiesic/qamatch/confirm"
	"github.com/poiesic/qamatch/config"
	"github.com/poiesic/qamatch/core"
	"github.com/poiesic/qamatch/corpus"
	"github.com/poiesic/qamatch/retrieval"
	"github.com/poiesic/qamatch/storage/artifact"
	"github.com/poiesic/qamatch/storage/badger"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "store",
		Aliases: []string{"s"},
		Usage:   "Path to the persisted store directory (default from config)",
	}
}

func kFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "k",
		Usage: "Number of candidates to retrieve (default from config)",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "qamatch",
		Usage: "Answer questions from a question/answer corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to qamatch.yaml (default ./qamatch.yaml, then ~/.config/qamatch/qamatch.yaml)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file to load",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build and save a store from a corpus JSON file",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Corpus JSON file",
						Required: true,
					},
					storeFlag(),
					&cli.IntFlag{
						Name:  "max-features",
						Usage: "Vocabulary size cap (default from config)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for vectorization (default from config)",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report vectorization progress on stderr",
						Value: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Show retrieval candidates without asking the oracle",
				ArgsUsage: "<question>",
				Action:    searchCommand,
				Flags:     []cli.Flag{storeFlag(), kFlag()},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question, confirming candidates with the oracle",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					storeFlag(),
					kFlag(),
					&cli.StringFlag{
						Name:  "oracle-host",
						Usage: "Oracle service host URL (default from config)",
					},
					&cli.StringFlag{
						Name:  "oracle-model",
						Usage: "Oracle model name (default from config)",
					},
					&cli.IntFlag{
						Name:  "oracle-attempts",
						Usage: "Maximum oracle attempts (default from config)",
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff (default from config)",
					},
					&cli.IntFlag{
						Name:  "max-candidates",
						Usage: "Candidates shown to the oracle (default from config)",
					},
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "Equivalence percentage asked of the oracle (default from config)",
					},
					&cli.BoolFlag{
						Name:  "fallback",
						Usage: "Print the top candidate unconfirmed when the oracle is unavailable",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print the stored question/answer pair at a row",
				ArgsUsage: "<row>",
				Action:    showCommand,
				Flags:     []cli.Flag{storeFlag()},
			},
			{
				Name:   "export",
				Usage:  "Write the stored corpus back out as corpus JSON",
				Action: exportCommand,
				Flags: []cli.Flag{
					storeFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				},
			},
			{
				Name:   "init-config",
				Usage:  "Write the effective configuration to a qamatch.yaml file",
				Action: initConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Config file to write",
						Value:   config.FileName,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
			},
		},
	}
}

// setup configures logging and loads the environment and config file.
func setup(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}

	if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", c.String("env-file"), err)
	}

	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if path = c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if path != "" {
		slog.Debug("config loaded", "path", path)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func appConfig(c *cli.Context) *config.AppConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.AppConfig); ok {
		return cfg
	}
	return config.Default()
}

func stringFlag(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}

func intFlag(c *cli.Context, name string, fallback int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return fallback
}

func durationFlag(c *cli.Context, name string, fallback time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	return fallback
}

func query(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", fmt.Errorf("a question is required")
	}
	return q, nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg := appConfig(c)
	storeDir := stringFlag(c, "store", cfg.StoreDir)

	pairs, err := corpus.ReadFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	opts := []corpus.Option{
		corpus.WithMaxFeatures(intFlag(c, "max-features", cfg.Build.MaxFeatures)),
	}
	if size := intFlag(c, "pool-size", cfg.Build.PoolSize); size > 0 {
		opts = append(opts, corpus.WithPoolSize(size))
	}
	if c.Bool("progress") {
		opts = append(opts, corpus.WithProgress(c.App.ErrWriter))
	}

	fmt.Fprintf(c.App.ErrWriter, "Corpus: %s (%d pairs)\n", c.String("input"), len(pairs))
	fmt.Fprintf(c.App.ErrWriter, "Store: %s\n", storeDir)
	fmt.Fprintln(c.App.ErrWriter)

	store, err := qamatch.BuildAndSave(ctx, pairs, storeDir, opts...)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Saved %d rows, %d features to %s\n", store.Rows(), store.Dimension(), storeDir)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg := appConfig(c)

	q, err := query(c)
	if err != nil {
		return err
	}

	store, err := artifact.Load(ctx, stringFlag(c, "store", cfg.StoreDir))
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	retriever, err := retrieval.NewRetriever(store)
	if err != nil {
		return err
	}

	results, err := retriever.SearchCandidates(ctx, q, intFlag(c, "k", cfg.Search.K))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printResults(c, results)
	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg := appConfig(c)

	q, err := query(c)
	if err != nil {
		return err
	}

	cfg.Oracle.Host = stringFlag(c, "oracle-host", cfg.Oracle.Host)
	cfg.Oracle.Model = stringFlag(c, "oracle-model", cfg.Oracle.Model)
	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	attempts := intFlag(c, "oracle-attempts", cfg.Oracle.Attempts)
	if attempts <= 0 {
		return fmt.Errorf("oracle-attempts must be greater than 0")
	}

	m, err := qamatch.Open(stringFlag(c, "store", cfg.StoreDir),
		qamatch.WithAIConfig(aiConfig),
		qamatch.WithOracleRetry(attempts, durationFlag(c, "retry-delay", cfg.RetryDelay())),
		qamatch.WithK(intFlag(c, "k", cfg.Search.K)),
		qamatch.WithGateOptions(
			confirm.WithMaxCandidates(intFlag(c, "max-candidates", cfg.Search.MaxCandidates)),
			confirm.WithThreshold(intFlag(c, "threshold", cfg.Search.Threshold)),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer m.Close()

	decision, candidates, err := m.Answer(ctx, q)
	return reportAnswer(c, decision, candidates, err)
}

func showCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg := appConfig(c)

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one row number is required")
	}
	row, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid row %q: %w", c.Args().First(), err)
	}

	metaDir := filepath.Join(stringFlag(c, "store", cfg.StoreDir), artifact.MetadataDir)
	repo, err := badger.OpenReadOnlyCorpusRepository(metaDir)
	if err != nil {
		return fmt.Errorf("failed to open metadata: %w", err)
	}
	defer repo.Close()

	pair, err := repo.GetPair(ctx, row)
	if err != nil {
		return fmt.Errorf("failed to read row %d: %w", row, err)
	}
	fmt.Fprintf(c.App.Writer, "Q: %s\nA: %s\n", pair.Question, pair.Answer)
	return nil
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()
	cfg := appConfig(c)

	store, err := artifact.Load(ctx, stringFlag(c, "store", cfg.StoreDir))
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	out := c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if err := corpus.Encode(out, store.Corpus().Pairs()); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

func initConfigCommand(c *cli.Context) error {
	path := c.String("output")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.Save(path, appConfig(c)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

// reportAnswer prints the outcome of Answer. With --fallback an oracle
// failure prints the top lexical candidate instead of failing.
func reportAnswer(c *cli.Context, decision confirm.Decision, candidates []core.SearchResult, err error) error {
	if err != nil {
		if errors.Is(err, confirm.ErrOracleFailed) && c.Bool("fallback") && len(candidates) > 0 {
			slog.Warn("oracle unavailable, using top candidate", "err", err)
			top := candidates[0]
			fmt.Fprintf(c.App.Writer, "UNCONFIRMED [%0.4f] %s\n", top.Similarity, top.Answer)
			return nil
		}
		return fmt.Errorf("answer failed: %w", err)
	}

	if decision.Confirmed() {
		fmt.Fprintln(c.App.Writer, decision.Answer)
		return nil
	}
	fmt.Fprintln(c.App.Writer, "No sufficiently similar question found.")
	return nil
}

func printResults(c *cli.Context, results []core.SearchResult) {
	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for _, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: '%s' (%d)[%0.4f]\n   %s\n", hit.Rank, hit.Question, hit.Row, hit.Similarity, hit.Answer)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
