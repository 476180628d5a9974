// Package pipeline wires the stages together: goal interpretation, audience
// filtering, feature engineering, clustering, persona labeling, and strategy
// generation. Each Run is an independent, stateless computation over the
// shared immutable population; concurrent runs need no coordination.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"personagen/internal/audience"
	"personagen/internal/cluster"
	"personagen/internal/config"
	"personagen/internal/feature"
	"personagen/internal/goal"
	"personagen/internal/llm"
	"personagen/internal/logging"
	"personagen/internal/persona"
	"personagen/internal/population"
	"personagen/internal/strategy"
	"personagen/internal/types"
)

// Options carries per-request overrides of the configured defaults. Zero
// values defer to configuration (and, for the k range, to the intent).
type Options struct {
	KMin          int
	KMax          int
	MinClusterPct float64
}

// Validate rejects option values the pipeline cannot honor. Zero KMin/KMax
// and zero MinClusterPct defer to configuration and are valid; everything
// else follows the same rules as the configured bounds.
func (o Options) Validate() error {
	if o.KMin < 0 || o.KMax < 0 {
		return fmt.Errorf("k range must be non-negative: k_min=%d k_max=%d", o.KMin, o.KMax)
	}
	if (o.KMin == 0) != (o.KMax == 0) {
		return fmt.Errorf("k_min and k_max must both be set or both be zero: k_min=%d k_max=%d", o.KMin, o.KMax)
	}
	if o.KMin > 0 {
		if o.KMin < 2 {
			return fmt.Errorf("k_min must be at least 2, got %d", o.KMin)
		}
		if o.KMin > o.KMax {
			return fmt.Errorf("invalid k range: k_min=%d > k_max=%d", o.KMin, o.KMax)
		}
	}
	if o.MinClusterPct < 0 || o.MinClusterPct >= 1 {
		return fmt.Errorf("min_cluster_pct must be in [0,1), got %v", o.MinClusterPct)
	}
	return nil
}

// Pipeline executes the goal-to-personas flow.
type Pipeline struct {
	store *population.Store
	gen   llm.Generator
	cfg   *config.Config

	interpreter *goal.Interpreter
	filter      *audience.Filter
	engineer    *feature.Engineer
	clusterer   *cluster.Clusterer
	strategist  *strategy.Generator
}

// New builds a pipeline. Configuration errors fail here, before any request
// does filtering or clustering work.
func New(store *population.Store, gen llm.Generator, cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	if gen == nil {
		gen = llm.Disabled{}
	}

	p := cfg.Pipeline
	return &Pipeline{
		store:       store,
		gen:         gen,
		cfg:         cfg,
		interpreter: goal.New(gen),
		filter:      audience.New(store, p.SubsetCap, p.RelaxationSize, p.Seed),
		engineer:    feature.New(store),
		clusterer:   cluster.New(store, p.Seed),
		strategist:  strategy.New(gen),
	}, nil
}

// Run executes the full pipeline for one goal.
func (p *Pipeline) Run(ctx context.Context, goalText string, opts Options) (*types.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run options: %w", err)
	}

	requestID := uuid.NewString()
	timer := logging.StartTimer(logging.CategoryPipeline, "run "+requestID)

	result := &types.Result{
		Goal:      goalText,
		RequestID: requestID,
	}

	// Stage 1: goal interpretation. Never fails.
	analysis := p.interpreter.Analyze(ctx, goalText)
	result.Analysis = analysis

	// Stage 2: audience filtering.
	subset, applied := p.filter.Apply(&analysis)
	result.Meta.SubsetSize = len(subset)
	result.Meta.FiltersApplied = applied

	if len(subset) < p.cfg.Pipeline.MinSubset {
		result.Meta.Warning = fmt.Sprintf("too few users: %d below minimum %d",
			len(subset), p.cfg.Pipeline.MinSubset)
		result.Personas = []types.Persona{}
		result.Strategies = []types.Strategy{}
		logging.Audience("Run %s aborted: %s", requestID, result.Meta.Warning)
		timer.StopWithInfo("insufficient data")
		return result, nil
	}

	// Stage 3: feature engineering, with optional collaborator transforms.
	vectors := p.engineer.Engineer(subset)
	feature.SuggestTransforms(ctx, p.gen, vectors, &analysis)

	// Stage 4: clustering with silhouette-scored k selection. Request
	// overrides win over configured bounds; zero defers to the intent range.
	kMin, kMax := opts.KMin, opts.KMax
	if kMin <= 0 || kMax <= 0 {
		kMin, kMax = p.cfg.Pipeline.KMin, p.cfg.Pipeline.KMax
	}
	clusters, err := p.clusterer.Cluster(ctx, subset, vectors, analysis.Intent, kMin, kMax)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}
	result.Meta.ChosenK = clusters.K
	result.Meta.CohesionScore = clusters.Score

	// Stage 5: persona labeling behind the per-cluster failure boundary.
	minPct := opts.MinClusterPct
	if minPct <= 0 {
		minPct = p.cfg.Pipeline.MinClusterPct
	}
	labeler := persona.New(p.gen, minPct, p.cfg.Pipeline.MaxPersonas)
	result.Personas = labeler.Label(ctx, clusters.Stats, &analysis)

	// Stage 6: strategies for the surviving personas.
	statsByCluster := make(map[int]*types.ClusterStats, len(clusters.Stats))
	for i := range clusters.Stats {
		statsByCluster[clusters.Stats[i].ClusterID] = &clusters.Stats[i]
	}
	result.Strategies = p.strategist.Generate(ctx, result.Personas, statsByCluster, analysis.Intent)

	timer.StopWithInfo(fmt.Sprintf("k=%d personas=%d", clusters.K, len(result.Personas)))
	return result, nil
}

// Population exposes the underlying store for diagnostics.
func (p *Pipeline) Population() *population.Store { return p.store }
