// Package analysis is the application service in front of the functional
// group analyser.  It adds result caching, atom-count guarding, metrics and
// the concurrent batch driver shared by the CLI and the HTTP API.
package analysis

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	domainFG "github.com/turtacn/funcgroup/internal/domain/funcgroup"
	"github.com/turtacn/funcgroup/internal/domain/molecule"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	metrics "github.com/turtacn/funcgroup/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/common"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// Matching mode label values.
const (
	ModeGreedy     = "greedy"
	ModeExhaustive = "exhaustive"
)

// DefaultConcurrency is the batch worker count when none is configured.
const DefaultConcurrency = 4

// ResultCache is the cache the service reads through.  The Redis result
// cache satisfies it.
type ResultCache interface {
	GetMany(ctx context.Context, smiles []string) (map[string]*funcgroup.AnalysisResult, error)
	GetOrCompute(ctx context.Context, smiles string, compute func(ctx context.Context) (*funcgroup.AnalysisResult, error)) (*funcgroup.AnalysisResult, error)
}

// Service analyses single molecules and batches.  It is safe for concurrent
// use.
type Service struct {
	analyzer    *domainFG.Analyzer
	cache       ResultCache
	metrics     *metrics.AppMetrics
	logger      logging.Logger
	maxAtoms    int
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics records analysis metrics into m.
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxAtoms rejects molecules with more atoms than n before matching.
// Zero disables the guard.
func WithMaxAtoms(n int) Option {
	return func(s *Service) { s.maxAtoms = n }
}

// WithConcurrency bounds the number of molecules analysed at once by
// AnalyzeBatch.  Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates the analysis service.  A nil analyzer selects the
// built-in catalog with default matching options.
func NewService(analyzer *domainFG.Analyzer, logger logging.Logger, opts ...Option) *Service {
	if analyzer == nil {
		analyzer = domainFG.NewAnalyzer(nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Service{
		analyzer:    analyzer,
		logger:      logger.Named("analysis"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the template catalog in use.
func (s *Service) Catalog() *domainFG.Catalog {
	return s.analyzer.Catalog()
}

// Mode returns the matching mode label of the analyser.
func (s *Service) Mode() string {
	return ModeOf(s.analyzer)
}

// ModeOf returns the matching mode label of a.
func ModeOf(a *domainFG.Analyzer) string {
	if a.Exhaustive() {
		return ModeExhaustive
	}
	return ModeGreedy
}

// CacheNamespace derives the result cache namespace of a: results depend on
// the catalog and on the matching mode besides the SMILES itself.
func CacheNamespace(a *domainFG.Analyzer) string {
	fp := a.Catalog().Fingerprint()
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return fp + ":" + ModeOf(a)
}

// Analyze returns the functional groups of one molecule.  Malformed input
// yields an error carrying one of the SMILES error codes; a molecule with no
// groups is not an error.
func (s *Service) Analyze(ctx context.Context, in funcgroup.MoleculeInput) (*funcgroup.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return s.analyze(ctx, in, nil)
}

func (s *Service) analyze(ctx context.Context, in funcgroup.MoleculeInput, prefetched map[string]*funcgroup.AnalysisResult) (*funcgroup.AnalysisResult, error) {
	smiles := strings.TrimSpace(in.SMILES)

	var (
		res *funcgroup.AnalysisResult
		err error
	)
	if hit, ok := prefetched[smiles]; ok {
		res = hit
	} else if s.cache != nil {
		res, err = s.cache.GetOrCompute(ctx, smiles, func(context.Context) (*funcgroup.AnalysisResult, error) {
			return s.compute(smiles)
		})
	} else {
		res, err = s.compute(smiles)
	}
	if err != nil {
		return nil, err
	}

	out := *res
	out.Refcode = in.Refcode
	if out.Cached {
		metrics.RecordAnalysis(s.metrics, metrics.StatusCached, s.Mode(), 0, 0)
	}
	metrics.RecordGroups(s.metrics, string(funcgroup.ViewAll), out.AllGroups)
	metrics.RecordGroups(s.metrics, string(funcgroup.ViewExact), out.ExactGroups)
	return &out, nil
}

// compute runs the core analyser on smiles.
func (s *Service) compute(smiles string) (*funcgroup.AnalysisResult, error) {
	start := time.Now()
	mol, err := molecule.Parse(smiles)
	if err != nil {
		metrics.RecordAnalysis(s.metrics, metrics.StatusError, s.Mode(), 0, 0)
		return nil, err
	}
	if s.maxAtoms > 0 && mol.Order() > s.maxAtoms {
		metrics.RecordAnalysis(s.metrics, metrics.StatusError, s.Mode(), 0, 0)
		return nil, errors.New(errors.CodeDepthExceeded, "molecule exceeds the atom limit").
			WithDetailf("smiles=%s atoms=%d max_atoms=%d", smiles, mol.Order(), s.maxAtoms)
	}

	core, err := s.analyzer.AnalyzeMolecule(mol)
	if err != nil {
		metrics.RecordAnalysis(s.metrics, metrics.StatusError, s.Mode(), 0, 0)
		return nil, err
	}
	metrics.RecordAnalysis(s.metrics, metrics.StatusOK, s.Mode(), mol.Order(), time.Since(start))
	return toResult(core), nil
}

func toResult(r *domainFG.Result) *funcgroup.AnalysisResult {
	return &funcgroup.AnalysisResult{
		SMILES:      r.SMILES,
		AllGroups:   r.AllGroups,
		ExactGroups: r.ExactGroups,
		Rings: funcgroup.RingSummary{
			Aromatic:    r.Rings.Aromatic,
			NonAromatic: r.Rings.NonAromatic,
			Total:       r.Rings.Total,
		},
		AlcoholCount: r.AlcoholCount(),
		AminoAcid:    r.AminoAcid,
	}
}

// AnalyzeBatch analyses inputs on a bounded worker pool.  A molecule that
// fails is recorded in the report's Failures and logged; the others are
// unaffected.  Only cancellation of ctx aborts the batch.  Results and
// Failures are both in input order.
func (s *Service) AnalyzeBatch(ctx context.Context, inputs []funcgroup.MoleculeInput) (*funcgroup.BatchReport, error) {
	runID := string(common.NewID())
	log := s.logger.With(logging.String(logging.KeyRunID, runID))
	start := time.Now()

	prefetched := s.prefetch(ctx, log, inputs)

	results := make([]*funcgroup.AnalysisResult, len(inputs))
	failures := make([]*funcgroup.BatchFailure, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		i, in := i, inputs[i]
		g.Go(func() error {
			done := metrics.TrackBatchTask(s.metrics)
			defer done()
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := s.analyze(gctx, in, prefetched)
			if err != nil {
				if isContextError(err) && gctx.Err() != nil {
					return err
				}
				failures[i] = &funcgroup.BatchFailure{
					Index:   i,
					Refcode: in.Refcode,
					SMILES:  in.SMILES,
					Code:    string(errors.GetCode(err)),
					Message: err.Error(),
				}
				log.Warn("molecule analysis failed",
					logging.Refcode(in.Refcode),
					logging.SMILES(in.SMILES),
					logging.String(logging.KeyErrorCode, string(errors.GetCode(err))),
					logging.Err(err),
				)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("batch aborted", logging.Err(err))
		return nil, contextError(err).WithDetailf("run_id=%s", runID)
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err).WithDetailf("run_id=%s", runID)
	}

	report := &funcgroup.BatchReport{
		RunID:   runID,
		Total:   len(inputs),
		Results: make([]*funcgroup.AnalysisResult, 0, len(inputs)),
	}
	for i := range inputs {
		if results[i] != nil {
			report.Results = append(report.Results, results[i])
		} else if failures[i] != nil {
			report.Failures = append(report.Failures, *failures[i])
		}
	}
	report.Succeeded = len(report.Results)
	report.Failed = len(report.Failures)

	elapsed := time.Since(start)
	report.DurationMS = elapsed.Milliseconds()
	metrics.RecordBatch(s.metrics, len(inputs), elapsed)
	log.Info("batch completed",
		logging.Int("total", report.Total),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", elapsed),
	)
	return report, nil
}

// prefetch loads every distinct SMILES of the batch from the cache in one
// round trip.  Failures only cost the prefetch.
func (s *Service) prefetch(ctx context.Context, log logging.Logger, inputs []funcgroup.MoleculeInput) map[string]*funcgroup.AnalysisResult {
	if s.cache == nil || len(inputs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(inputs))
	keys := make([]string, 0, len(inputs))
	for _, in := range inputs {
		smi := strings.TrimSpace(in.SMILES)
		if smi == "" {
			continue
		}
		if _, dup := seen[smi]; dup {
			continue
		}
		seen[smi] = struct{}{}
		keys = append(keys, smi)
	}
	if len(keys) == 0 {
		return nil
	}
	hits, err := s.cache.GetMany(ctx, keys)
	if err != nil {
		log.Warn("cache prefetch failed", logging.Err(err))
		return nil
	}
	log.Debug("cache prefetch", logging.Int("requested", len(keys)), logging.Int("hits", len(hits)))
	return hits
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func contextError(err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, "analysis deadline exceeded")
	}
	return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "analysis cancelled")
}
