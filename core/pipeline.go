package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/huangsam/gitspark/core/agg"
	"github.com/huangsam/gitspark/core/governance"
	"github.com/huangsam/gitspark/core/normalize"
	"github.com/huangsam/gitspark/core/team"
	"github.com/huangsam/gitspark/core/trends"
	"github.com/huangsam/gitspark/schema"
)

// errPipelineFinalized is returned when a finalized pipeline is reused.
var errPipelineFinalized = errors.New("pipeline already finalized")

// Pipeline folds raw commits one at a time through every aggregator.
// It is not safe for concurrent use; feed it from a single goroutine.
type Pipeline struct {
	opts       schema.AnalysisOptions
	index      int
	warnings   []string
	sizes      []float64
	authors    *agg.AuthorAggregator
	files      *agg.FileAggregator
	repo       *agg.RepoAggregator
	governance *governance.Scorer
	team       *team.Tracker
	trends     *trends.Aggregator
	digest     *xxhash.Digest
	finalized  bool
}

// NewPipeline validates opts and prepares every aggregator.
func NewPipeline(opts schema.AnalysisOptions) (*Pipeline, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	trendAgg, err := trends.New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	loc := authorLocation(opts)
	return &Pipeline{
		opts:       opts,
		warnings:   []string{},
		authors:    agg.NewAuthorAggregator(loc, opts.BusinessHours),
		files:      agg.NewFileAggregator(),
		repo:       agg.NewRepoAggregator(loc),
		governance: governance.NewScorer(opts.Governance),
		team:       team.NewTracker(loc),
		trends:     trendAgg,
		digest:     xxhash.New(),
	}, nil
}

// Add normalizes one raw commit and folds it. A malformed commit is fatal and
// returned as a *MalformedCommitError; recoverable problems become warnings.
// Cancellation is checked before each commit.
func (p *Pipeline) Add(ctx context.Context, raw schema.RawCommit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.finalized {
		return errPipelineFinalized
	}

	index := p.index
	p.index++

	record, warnings, err := normalize.Normalize(index, raw, p.opts.Excludes)
	if err != nil {
		return err
	}
	p.warnings = append(p.warnings, warnings...)

	if !p.inWindow(record) {
		p.warnings = append(p.warnings, fmt.Sprintf("commit %s is outside the analysis window and was skipped", record.ShortHash))
		return nil
	}
	p.fold(&record)
	return nil
}

// Commits returns how many commits were folded so far.
func (p *Pipeline) Commits() int {
	return len(p.sizes)
}

func (p *Pipeline) inWindow(c schema.CommitRecord) bool {
	if !p.opts.Since.IsZero() && c.Timestamp.Before(p.opts.Since) {
		return false
	}
	if !p.opts.Until.IsZero() && c.Timestamp.After(p.opts.Until) {
		return false
	}
	return true
}

func (p *Pipeline) fold(c *schema.CommitRecord) {
	p.sizes = append(p.sizes, float64(c.Churn()))
	p.authors.Add(c)
	p.files.Add(c)
	p.repo.Add(c)
	p.governance.Add(c)
	p.team.Add(c)
	p.trends.Add(c)
	p.fingerprint(c)
}

// fingerprint feeds the identity of a normalized commit into the digest.
func (p *Pipeline) fingerprint(c *schema.CommitRecord) {
	write := func(s string) {
		_, _ = p.digest.WriteString(s)
		_, _ = p.digest.WriteString("\x00")
	}
	write(c.Hash)
	write(c.AuthorKey)
	write(strconv.FormatInt(c.Timestamp.UnixNano(), 10))
	for _, fc := range c.Files {
		write(fc.Path)
		write(string(fc.Status))
		write(strconv.Itoa(fc.Insertions))
		write(strconv.Itoa(fc.Deletions))
	}
}

// Finalize assembles the report. The pipeline cannot be used afterwards.
func (p *Pipeline) Finalize() (*schema.AnalysisReport, error) {
	if p.finalized {
		return nil, errPipelineFinalized
	}
	p.finalized = true

	files := p.files.Finalize()
	p.warnings = append(p.warnings, p.files.Warnings()...)

	return assemble(assembly{
		opts:        p.opts,
		warnings:    p.warnings,
		fingerprint: fmt.Sprintf("%016x", p.digest.Sum64()),
		sizes:       p.sizes,
		authors:     p.authors.Finalize(),
		files:       files,
		repo:        p.repo.Finalize(files),
		governance:  p.governance.Finalize(),
		team:        p.team,
		trends:      p.trends.Finalize(),
	}), nil
}

// Analyze runs the whole pipeline over an in-memory commit sequence.
func Analyze(ctx context.Context, commits []schema.RawCommit, opts schema.AnalysisOptions) (*schema.AnalysisReport, error) {
	p, err := NewPipeline(opts)
	if err != nil {
		return nil, err
	}
	for _, raw := range commits {
		if err := p.Add(ctx, raw); err != nil {
			return nil, err
		}
	}
	return p.Finalize()
}
