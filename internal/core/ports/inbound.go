package ports

import (
	"context"
	"io"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

// RFPExtractor is the inbound contract for document-to-record extraction.
// It degrades to a default record instead of failing; only a judge transport
// error is surfaced to the caller.
type RFPExtractor interface {
	Extract(ctx context.Context, text string) (*domain.ExtractedDocument, error)
}

// RFPIngestor handles document upload, extraction, and RFP creation.
// Document type is decided from the filename extension.
type RFPIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.RFP, *domain.ExtractedDocument, error)
	Preview(ctx context.Context, filename string, body io.Reader) (*domain.ExtractedDocument, error)
}

// RFPManager covers manual RFP creation and lifecycle updates.
type RFPManager interface {
	Create(ctx context.Context, rfp domain.RFP) (*domain.RFP, error)
	UpdateStatus(ctx context.Context, id string, status domain.RFPStatus) (*domain.RFP, error)
}

// PairScorer produces a compatibility score for one (vendor, rfp) pair.
// The call always yields a result within the configured budget.
type PairScorer interface {
	Score(ctx context.Context, vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore
}

// BatchScorer fans pair scoring out across the full vendor roster.
type BatchScorer interface {
	ScoreAllVendors(ctx context.Context, rfpID string) (*domain.BatchReport, error)
}
