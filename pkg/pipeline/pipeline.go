// Package pipeline runs one end-to-end topology analysis: load the datasets,
// build the graph, enrich cones, infer the clique, rank, then write the
// report and optional export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/config"
	"github.com/dd0wney/cluso-astopo/pkg/export"
	"github.com/dd0wney/cluso-astopo/pkg/logging"
	"github.com/dd0wney/cluso-astopo/pkg/metrics"
	"github.com/dd0wney/cluso-astopo/pkg/records"
	"github.com/dd0wney/cluso-astopo/pkg/report"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// ErrSourceUnavailable is returned when an input dataset cannot be opened
var ErrSourceUnavailable = errors.New("input source unavailable")

// Phase names, as logged and as used for the phase duration metric
const (
	PhaseLoad          = "load"
	PhaseBuild         = "build"
	PhaseCones         = "cones"
	PhaseTier1         = "tier1"
	PhaseRank          = "rank"
	PhaseOrganizations = "organizations"
	PhaseDistributions = "distributions"
	PhaseReport        = "report"
	PhaseExport        = "export"
)

// Uploader ships a finished export file
type Uploader interface {
	Upload(ctx context.Context, path string, compressed bool) error
	Location() string
}

// Deps carries the collaborators of a run. Zero values are replaced with
// working defaults.
type Deps struct {
	Logger   logging.Logger
	Metrics  *metrics.Registry
	Progress algorithms.ProgressFunc
	// Stdout receives the report when no output file is configured
	Stdout      io.Writer
	NewUploader func(ctx context.Context, opts export.S3Options) (Uploader, error)
	Now         func() time.Time
	NewRunID    func() string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewRegistry()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.NewUploader == nil {
		d.NewUploader = func(ctx context.Context, opts export.S3Options) (Uploader, error) {
			return export.NewS3UploaderFromOptions(ctx, opts)
		}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	return d
}

// Result is the state of a finished analysis
type Result struct {
	RunID         string
	StartedAt     time.Time
	Graph         *topology.Graph
	Tier1         *algorithms.Tier1Result
	Rankings      *algorithms.Rankings
	Distributions *algorithms.Distributions
	Streams       map[records.Stream]records.Stats
	// NamedOrgs counts highlighted nodes that received an organization name
	NamedOrgs int
}

// Report returns the renderable view of the result
func (r *Result) Report(generatedAt time.Time) *report.Report {
	return &report.Report{
		RunID:         r.RunID,
		GeneratedAt:   generatedAt,
		Rankings:      r.Rankings,
		Distributions: r.Distributions,
	}
}

// runner threads the per-run logger and metrics through the phases
type runner struct {
	cfg    *config.Config
	deps   Deps
	logger logging.Logger
}

// phase times fn, records its duration and logs the outcome
func (r *runner) phase(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := logging.StartTimer(r.logger, "pipeline phase", logging.Phase(name))
	if err := fn(); err != nil {
		timer.EndError(err)
		return fmt.Errorf("%s: %w", name, err)
	}
	r.deps.Metrics.RecordPhase(name, timer.Elapsed())
	timer.End()
	return nil
}

// Analyze loads the inputs and computes every derived result without
// writing any output
func Analyze(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	deps = deps.withDefaults()
	res := &Result{
		RunID:     deps.NewRunID(),
		StartedAt: deps.Now(),
	}
	r := &runner{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With(logging.RunID(res.RunID)),
	}
	r.logger.Info("analysis started", logging.Int("workers", cfg.Cone.Workers))

	var sources topology.Sources
	err := r.phase(ctx, PhaseLoad, func() error {
		var err error
		sources, res.Streams, err = r.load()
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseBuild, func() error {
		res.Graph = topology.Build(sources)
		stats := res.Graph.GetStatistics()
		deps.Metrics.RecordGraph(stats.NodeCount, stats.RelationshipCount, stats.IPv4PrefixCount, stats.IPv6PrefixCount)
		r.logger.Info("graph built",
			logging.Count(stats.NodeCount),
			logging.Int("relationships", stats.RelationshipCount),
			logging.Int("ipv4_prefixes", stats.IPv4PrefixCount),
			logging.Int("ipv6_prefixes", stats.IPv6PrefixCount))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseCones, func() error {
		opts := algorithms.ConeOptions{
			Workers:   cfg.Cone.Workers,
			ChunkSize: cfg.Cone.ChunkSize,
			Progress:  deps.Progress,
		}
		if err := algorithms.EnrichCones(res.Graph, opts); err != nil {
			return err
		}
		for _, node := range res.Graph.Nodes() {
			deps.Metrics.RecordConeSize(node.ConeSize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseTier1, func() error {
		res.Tier1 = algorithms.InferTier1(res.Graph, algorithms.Tier1Options{
			MaxRejections:     cfg.Tier1.MaxRejections,
			StrictDegreeOrder: cfg.Tier1.StrictDegreeOrder,
		})
		deps.Metrics.RecordTier1(len(res.Tier1.Members), res.Tier1.Rejected)
		r.logger.Info("tier-1 clique inferred",
			logging.Count(len(res.Tier1.Members)),
			logging.Int("scanned", res.Tier1.Scanned),
			logging.Int("rejected", res.Tier1.Rejected),
			logging.Bool("exhausted", res.Tier1.Exhausted))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseRank, func() error {
		res.Rankings = algorithms.BuildRankings(res.Graph, res.Tier1, cfg.Ranking.TopN)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.HasOrganizations() {
		err = r.phase(ctx, PhaseOrganizations, func() error {
			return r.enrichOrganizations(res)
		})
		if err != nil {
			return nil, err
		}
	}

	err = r.phase(ctx, PhaseDistributions, func() error {
		res.Distributions = algorithms.ComputeDistributions(res.Graph)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Run analyzes, then writes the report, the export and the metrics textfile
func Run(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	deps = deps.withDefaults()
	res, err := Analyze(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	r := &runner{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With(logging.RunID(res.RunID)),
	}

	err = r.phase(ctx, PhaseReport, func() error {
		return r.writeReport(res)
	})
	if err != nil {
		return nil, err
	}

	if cfg.Export.Path != "" {
		err = r.phase(ctx, PhaseExport, func() error {
			return r.export(ctx, res)
		})
		if err != nil {
			return nil, err
		}
	}

	deps.Metrics.UpdateSystemMetrics(deps.Now())
	if cfg.Metrics.Textfile != "" {
		if err := deps.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return nil, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	r.logger.Info("analysis finished", logging.Latency(deps.Now().Sub(res.StartedAt)))
	return res, nil
}

// load opens the four graph datasets and parses them
func (r *runner) load() (topology.Sources, map[records.Stream]records.Stats, error) {
	in := r.cfg.Inputs
	paths := []string{in.Classification, in.Relationships, in.Prefix2ASv4, in.Prefix2ASv6}

	files := make([]*records.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, path := range paths {
		f, err := openSource(path)
		if err != nil {
			return topology.Sources{}, nil, err
		}
		files = append(files, f)
	}

	opts := records.Options{Strict: in.Strict}
	sources, stats, err := records.ReadSources(files[0], files[1], files[2], files[3], opts)
	if err != nil {
		return topology.Sources{}, nil, err
	}
	for stream, s := range stats {
		r.recordStream(stream, s)
	}
	return sources, stats, nil
}

func (r *runner) recordStream(stream records.Stream, s records.Stats) {
	r.deps.Metrics.RecordStream(string(stream), s.Records, s.Comments, s.Skipped)
	fields := []logging.Field{
		logging.Stream(string(stream)),
		logging.Int("records", s.Records),
		logging.Int("comments", s.Comments),
		logging.Int("skipped", s.Skipped),
	}
	if s.Skipped > 0 {
		r.logger.Warn("malformed lines skipped", fields...)
		return
	}
	r.logger.Debug("stream parsed", fields...)
}

// enrichOrganizations streams the as2org table, then the organization
// names, into the highlighted nodes
func (r *runner) enrichOrganizations(res *Result) error {
	opts := records.Options{Strict: r.cfg.Inputs.Strict}
	highlighted := res.Rankings.Highlighted()
	assigner := algorithms.NewOrgAssigner(highlighted)

	as2org, err := openSource(r.cfg.Inputs.AS2Org)
	if err != nil {
		return err
	}
	defer as2org.Close()
	stats, err := records.ScanAS2Org(as2org, opts, func(rec records.OrgRecord) {
		assigner.AssignOrgID(rec)
	})
	if err != nil {
		return err
	}
	r.recordStream(records.StreamAS2Org, stats)
	res.Streams[records.StreamAS2Org] = stats

	orgs, err := openSource(r.cfg.Inputs.Organizations)
	if err != nil {
		return err
	}
	defer orgs.Close()
	stats, err = records.ScanOrganizations(orgs, opts, func(rec records.OrgNameRecord) {
		assigner.AssignOrgName(rec)
	})
	if err != nil {
		return err
	}
	r.recordStream(records.StreamOrganizations, stats)
	res.Streams[records.StreamOrganizations] = stats

	for _, node := range highlighted {
		if node.OrgName != "" {
			res.NamedOrgs++
		}
	}
	r.logger.Info("organizations assigned", logging.Count(res.NamedOrgs))
	return nil
}

func (r *runner) writeReport(res *Result) (err error) {
	sink, err := report.NewSink(r.cfg.Report.Format)
	if err != nil {
		return err
	}

	w := r.deps.Stdout
	if path := r.cfg.Report.Output; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report %s: %w", path, err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return sink.Write(w, res.Report(r.deps.Now()))
}

func (r *runner) export(ctx context.Context, res *Result) error {
	exp := r.cfg.Export
	opts := export.Options{
		RunID:    res.RunID,
		Compress: exp.Compress,
		Now:      r.deps.Now,
	}
	if err := export.WriteFile(exp.Path, res.Graph, opts); err != nil {
		return err
	}
	r.logger.Info("export written", logging.Path(exp.Path), logging.Bool("compressed", exp.Compress))

	if exp.S3.Bucket == "" {
		return nil
	}
	uploader, err := r.deps.NewUploader(ctx, export.S3Options{
		Bucket:          exp.S3.Bucket,
		Key:             exp.S3.Key,
		Region:          exp.S3.Region,
		Endpoint:        exp.S3.Endpoint,
		AccessKeyID:     exp.S3.AccessKeyID,
		SecretAccessKey: exp.S3.SecretAccessKey,
	})
	if err != nil {
		return err
	}
	if err := uploader.Upload(ctx, exp.Path, exp.Compress); err != nil {
		return err
	}
	r.logger.Info("export uploaded", logging.String("location", uploader.Location()))
	return nil
}

func openSource(path string) (*records.File, error) {
	f, err := records.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return f, nil
}
