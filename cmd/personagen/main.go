package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"personagen/internal/competitor"
	"personagen/internal/config"
	"personagen/internal/goal"
	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/pipeline"
	"personagen/internal/population"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	// Generate flags
	kMin          int
	kMax          int
	minClusterPct float64
	timeout       time.Duration

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "personagen",
	Short: "personagen - goal-driven audience persona generator",
	Long: `personagen turns a marketing goal written in plain language into a set of
audience personas with per-persona activation strategies.

The pipeline interprets the goal, filters a user population down to the
targeted audience, engineers behavioral features, clusters the audience,
labels each cluster as a persona, and generates a strategy per persona.

All stages are deterministic; an optional Gemini collaborator refines goal
analysis, feature transforms, and persona labels when an API key is set.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return logging.Initialize(cfg.Logging.Dir, verbose || cfg.Logging.Debug, cfg.Logging.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// generateCmd runs the full pipeline for a goal
var generateCmd = &cobra.Command{
	Use:   "generate [goal]",
	Short: "Generate personas and strategies for a marketing goal",
	Long: `Runs the full pipeline for a goal and prints the result as JSON.

Example:
  personagen generate "college students in tier-2 cities worried about price"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

// analyzeCmd runs goal interpretation only
var analyzeCmd = &cobra.Command{
	Use:   "analyze [goal]",
	Short: "Show the structured analysis of a goal without running the pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

// competitorsCmd reports competitor positioning for a goal
var competitorsCmd = &cobra.Command{
	Use:   "competitors [goal]",
	Short: "Detect competitor mentions in a goal and suggest positioning",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompetitors,
}

// statsCmd summarizes the loaded population
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the user population the pipeline would run against",
	RunE:  runStats,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: personagen.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite population database (default: synthetic population)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	generateCmd.Flags().IntVar(&kMin, "k-min", 0, "Minimum cluster count (default: by intent)")
	generateCmd.Flags().IntVar(&kMax, "k-max", 0, "Maximum cluster count (default: by intent)")
	generateCmd.Flags().Float64Var(&minClusterPct, "min-cluster-pct", 0, "Drop clusters below this population share (default: from config)")
	generateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Pipeline timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(competitorsCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	cfg, store, gen, err := buildStack()
	if err != nil {
		return err
	}

	p, err := pipeline.New(store, gen, cfg)
	if err != nil {
		return err
	}

	goalText := strings.Join(args, " ")
	logger.Info("Running pipeline", zap.String("goal", goalText), zap.Int("population", store.Len()))

	result, err := p.Run(ctx, goalText, pipeline.Options{
		KMin:          kMin,
		KMax:          kMax,
		MinClusterPct: minClusterPct,
	})
	if err != nil {
		return err
	}
	if result.Meta.Warning != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", result.Meta.Warning)
	}
	return printJSON(result)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_, _, gen, err := buildStack()
	if err != nil {
		return err
	}

	analysis := goal.New(gen).Analyze(context.Background(), strings.Join(args, " "))
	return printJSON(analysis)
}

func runCompetitors(cmd *cobra.Command, args []string) error {
	analysis := competitor.Analyze(strings.Join(args, " "))
	return printJSON(analysis)
}

func runStats(cmd *cobra.Command, args []string) error {
	_, store, _, err := buildStack()
	if err != nil {
		return err
	}
	return printJSON(store.Summarize())
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = "personagen.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Population.DatabasePath = dbPath
	}
	return cfg, nil
}

// buildStack loads config, opens the population, and wires the collaborator.
// A missing database falls back to the deterministic synthetic population so
// the tool always works out of the box.
func buildStack() (*config.Config, *population.Store, llm.Generator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	var store *population.Store
	if cfg.Population.DatabasePath != "" {
		store, err = population.Open(cfg.Population.DatabasePath, cfg.Population.Table, cfg.Population.SampleSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open population database: %w", err)
		}
		logger.Info("Loaded population from database",
			zap.String("path", cfg.Population.DatabasePath), zap.Int("users", store.Len()))
	} else {
		store = population.Synthetic(cfg.Population.SampleSize, cfg.Pipeline.Seed)
		logger.Info("Using synthetic population", zap.Int("users", store.Len()))
	}

	gen := llm.FromConfig(cfg)
	if !gen.Enabled() {
		logger.Info("Collaborator disabled, using deterministic fallbacks")
	}
	return cfg, store, gen, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
