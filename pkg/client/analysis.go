package client

import (
	"context"

	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// AnalysisClient calls the /api/v1 analysis endpoints.
type AnalysisClient struct {
	client *Client
}

// CatalogEntry is one template of the server's catalog.
type CatalogEntry struct {
	Pattern string `json:"pattern"`
	Name    string `json:"name"`
}

// CatalogInfo describes the catalog the server analyses against.
type CatalogInfo struct {
	Fingerprint string         `json:"fingerprint"`
	Mode        string         `json:"mode"`
	Count       int            `json:"count"`
	Entries     []CatalogEntry `json:"entries"`
}

// BatchOptions controls the optional table in a batch response.
type BatchOptions struct {
	Table bool
	View  funcgroup.View
}

// BatchResult is a batch report plus the table when one was requested.
type BatchResult struct {
	funcgroup.BatchReport
	Table *funcgroup.Table `json:"table,omitempty"`
}

type batchRequest struct {
	Molecules []funcgroup.MoleculeInput `json:"molecules"`
	Table     bool                      `json:"table,omitempty"`
	View      funcgroup.View            `json:"view,omitempty"`
}

// Analyze reports the functional groups of a single molecule.
func (a *AnalysisClient) Analyze(ctx context.Context, in funcgroup.MoleculeInput) (*funcgroup.AnalysisResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var res funcgroup.AnalysisResult
	if err := a.client.post(ctx, "/api/v1/analyze", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AnalyzeSMILES is Analyze without a refcode.
func (a *AnalysisClient) AnalyzeSMILES(ctx context.Context, smiles string) (*funcgroup.AnalysisResult, error) {
	return a.Analyze(ctx, funcgroup.MoleculeInput{SMILES: smiles})
}

// AnalyzeBatch analyses many molecules in one request.  Molecules that fail
// are listed in the result's Failures rather than returned as an error.
func (a *AnalysisClient) AnalyzeBatch(ctx context.Context, inputs []funcgroup.MoleculeInput, opts BatchOptions) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, errors.InvalidParam("molecules must not be empty")
	}
	if opts.View != "" && !opts.View.IsValid() {
		return nil, errors.InvalidParam("unknown view").WithDetailf("view=%s", opts.View)
	}
	var res BatchResult
	req := batchRequest{Molecules: inputs, Table: opts.Table, View: opts.View}
	if err := a.client.post(ctx, "/api/v1/analyze/batch", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Catalog returns the server's template catalog.
func (a *AnalysisClient) Catalog(ctx context.Context) (*CatalogInfo, error) {
	var info CatalogInfo
	if err := a.client.get(ctx, "/api/v1/catalog", &info); err != nil {
		return nil, err
	}
	return &info, nil
}
