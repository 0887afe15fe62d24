package ports

import (
	"context"
	"io"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

// RFPRepository persists and reads RFP records.
type RFPRepository interface {
	Create(ctx context.Context, rfp *domain.RFP) error
	GetByID(ctx context.Context, id string) (*domain.RFP, error)
	List(ctx context.Context, filter domain.RFPFilter) ([]domain.RFP, error)
	UpdateStatus(ctx context.Context, id string, status domain.RFPStatus) (*domain.RFP, error)
}

// VendorRepository reads the vendor roster.
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
}

// ScoreRepository stores one current compatibility score per (rfp, vendor).
type ScoreRepository interface {
	Upsert(ctx context.Context, score domain.CompatibilityScore) error
	InitPending(ctx context.Context, rfpID string, vendorIDs []string) error
	ListByRFP(ctx context.Context, rfpID string, orderByScore bool) ([]domain.CompatibilityScore, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.CompatibilityScore, error)
}

// NotificationStore records and reads match notifications. Notify is
// fire-and-forget from the orchestrator's point of view.
type NotificationStore interface {
	Notify(ctx context.Context, n domain.Notification) error
	ListByVendor(ctx context.Context, vendorID string, limit int) ([]domain.Notification, error)
}

// MessageQueue publishes/consumes RFP activation events.
type MessageQueue interface {
	PublishRFPActivated(ctx context.Context, rfpID string) error
	SubscribeRFPActivated(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentJudge is the text-in/text-out document-understanding model call.
// The response is an untyped blob; callers validate it immediately.
type DocumentJudge interface {
	ExtractRFP(ctx context.Context, text string) (string, error)
}

// ScoringJudge evaluates one vendor profile against one set of RFP
// requirements and returns an untyped analysis blob.
type ScoringJudge interface {
	JudgeCompatibility(ctx context.Context, vendorProfile, rfpRequirements string) (string, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor converts a stored document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, key, filename string) (string, error)
}
