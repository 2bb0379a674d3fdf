package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/funcgroup/internal/application/analysis"
	domainFG "github.com/turtacn/funcgroup/internal/domain/funcgroup"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// AnalysisService is the application service behind the analysis endpoints.
type AnalysisService interface {
	Analyze(ctx context.Context, in funcgroup.MoleculeInput) (*funcgroup.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, inputs []funcgroup.MoleculeInput) (*funcgroup.BatchReport, error)
	Catalog() *domainFG.Catalog
	Mode() string
}

// AnalysisHandler serves single and batch analysis plus catalog inspection.
type AnalysisHandler struct {
	svc          AnalysisService
	logger       logging.Logger
	maxBatchSize int
	maxBodySize  int64
}

// AnalysisHandlerConfig bounds request sizes.
type AnalysisHandlerConfig struct {
	MaxBatchSize int
	MaxBodySize  int64
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(svc AnalysisService, logger logging.Logger, cfg AnalysisHandlerConfig) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 1000
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	return &AnalysisHandler{
		svc:          svc,
		logger:       logger.Named("http.analysis"),
		maxBatchSize: cfg.MaxBatchSize,
		maxBodySize:  cfg.MaxBodySize,
	}
}

// BatchRequest is the body of POST /api/v1/analyze/batch.
type BatchRequest struct {
	Molecules []funcgroup.MoleculeInput `json:"molecules"`
	// Table adds a group-count table over the successful results.
	Table bool           `json:"table,omitempty"`
	View  funcgroup.View `json:"view,omitempty"`
}

// BatchResponse is a batch report with an optional table.
type BatchResponse struct {
	*funcgroup.BatchReport
	Table *funcgroup.Table `json:"table,omitempty"`
}

// CatalogResponse describes the loaded template catalog.
type CatalogResponse struct {
	Fingerprint string           `json:"fingerprint"`
	Mode        string           `json:"mode"`
	Count       int              `json:"count"`
	Entries     []domainFG.Entry `json:"entries"`
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var in funcgroup.MoleculeInput
	if err := decodeJSON(w, r, h.maxBodySize, &in); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Analyze(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, res)
}

// AnalyzeBatch handles POST /api/v1/analyze/batch.  Per-molecule failures are
// reported inside a 200 response; only request-level problems are errors.
func (h *AnalysisHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if len(req.Molecules) == 0 {
		writeAppError(w, r, h.logger, errors.InvalidParam("molecules must not be empty"))
		return
	}
	if len(req.Molecules) > h.maxBatchSize {
		writeAppError(w, r, h.logger, errors.InvalidParam("batch too large").
			WithDetailf("size=%d max_batch_size=%d", len(req.Molecules), h.maxBatchSize))
		return
	}
	view := req.View
	if view == "" {
		view = funcgroup.ViewAll
	}
	if !view.IsValid() {
		writeAppError(w, r, h.logger, errors.InvalidParam("unknown view").WithDetailf("view=%s", req.View))
		return
	}

	report, err := h.svc.AnalyzeBatch(r.Context(), req.Molecules)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	resp := BatchResponse{BatchReport: report}
	if req.Table {
		resp.Table = analysis.BuildTable(report.Results, view)
	}
	writeSuccess(w, r, http.StatusOK, resp)
}

// Catalog handles GET /api/v1/catalog.
func (h *AnalysisHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	writeSuccess(w, r, http.StatusOK, CatalogResponse{
		Fingerprint: cat.Fingerprint(),
		Mode:        h.svc.Mode(),
		Count:       cat.Len(),
		Entries:     cat.Entries(),
	})
}
