package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

// TextCondenser bounds document text before it reaches the judge prompt.
type TextCondenser interface {
	Condense(text string) string
}

// IngestRFPUseCase stores an uploaded document, extracts its text, runs the
// extraction normalizer, persists the resulting RFP as active, and publishes
// the activation event that triggers batch scoring.
type IngestRFPUseCase struct {
	storage   ports.ObjectStorage
	texts     ports.TextExtractor
	extractor ports.RFPExtractor
	rfps      ports.RFPRepository
	queue     ports.MessageQueue
	condenser TextCondenser
}

func NewIngestRFPUseCase(
	storage ports.ObjectStorage,
	texts ports.TextExtractor,
	extractor ports.RFPExtractor,
	rfps ports.RFPRepository,
	queue ports.MessageQueue,
	condenser TextCondenser,
) *IngestRFPUseCase {
	return &IngestRFPUseCase{
		storage:   storage,
		texts:     texts,
		extractor: extractor,
		rfps:      rfps,
		queue:     queue,
		condenser: condenser,
	}
}

func (uc *IngestRFPUseCase) Upload(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.RFP, *domain.ExtractedDocument, error) {
	key, extracted, err := uc.storeAndExtract(ctx, filename, body)
	if err != nil {
		return nil, nil, err
	}

	rfp := rfpFromExtracted(extracted)
	rfp.DocumentKey = key
	rfp.Status = domain.RFPStatusActive

	if err := uc.rfps.Create(ctx, rfp); err != nil {
		return nil, nil, fmt.Errorf("create rfp: %w", err)
	}

	if err := uc.queue.PublishRFPActivated(ctx, rfp.ID); err != nil {
		return nil, nil, fmt.Errorf("publish activation event: %w", err)
	}

	return rfp, extracted, nil
}

// Preview runs extraction only; nothing is persisted. Used for form
// auto-fill in the upload UI.
func (uc *IngestRFPUseCase) Preview(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.ExtractedDocument, error) {
	key, extracted, err := uc.storeAndExtract(ctx, filename, body)
	if err != nil {
		return nil, err
	}
	if err := uc.storage.Delete(ctx, key); err != nil {
		slog.Warn("delete preview document failed", "key", key, "error", err)
	}
	return extracted, nil
}

func (uc *IngestRFPUseCase) storeAndExtract(
	ctx context.Context,
	filename string,
	body io.Reader,
) (string, *domain.ExtractedDocument, error) {
	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, body); err != nil {
		return "", nil, fmt.Errorf("save to object storage: %w", err)
	}

	text, err := uc.texts.Extract(ctx, key, filename)
	if err != nil {
		return "", nil, fmt.Errorf("extract document text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, domain.WrapError(domain.ErrInvalidInput, "extract document text", fmt.Errorf("empty document: %s", filename))
	}

	if uc.condenser != nil {
		text = uc.condenser.Condense(text)
	}

	extracted, err := uc.extractor.Extract(ctx, text)
	if err != nil {
		return "", nil, err
	}
	return key, extracted, nil
}

func rfpFromExtracted(doc *domain.ExtractedDocument) *domain.RFP {
	now := time.Now().UTC()
	rfp := &domain.RFP{
		ID:                     uuid.NewString(),
		SolicitationNumber:     doc.SolicitationNumber,
		ProjectTitle:           doc.ProjectTitle,
		Agency:                 doc.Agency,
		Budget:                 doc.Budget,
		SecurityClearance:      doc.SecurityClearance,
		Timeline:               doc.Timeline,
		Description:            doc.Description,
		RequiredCapabilities:   doc.RequiredCapabilities,
		RequiredCertifications: doc.RequiredCertifications,
		Categories:             doc.Categories,
		Contact:                doc.Contact,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if doc.DueDate != "" {
		if due, err := parseDueDate(doc.DueDate); err == nil {
			rfp.DueDate = &due
		}
	}
	return rfp
}

func parseDueDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date: %q", value)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}
