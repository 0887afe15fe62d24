package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

type storageFake struct {
	savedKey   string
	savedBody  string
	deletedKey string
	saveErr    error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deletedKey = key
	return nil
}

type textExtractorFake struct {
	text string
	err  error
}

func (f *textExtractorFake) Extract(context.Context, string, string) (string, error) {
	return f.text, f.err
}

type rfpExtractorFake struct {
	doc      *domain.ExtractedDocument
	err      error
	received string
}

func (f *rfpExtractorFake) Extract(_ context.Context, text string) (*domain.ExtractedDocument, error) {
	f.received = text
	return f.doc, f.err
}

type ingestRFPRepoFake struct {
	created *domain.RFP
	err     error
}

func (f *ingestRFPRepoFake) Create(_ context.Context, rfp *domain.RFP) error {
	if f.err != nil {
		return f.err
	}
	copyRFP := *rfp
	f.created = &copyRFP
	return nil
}

func (f *ingestRFPRepoFake) GetByID(context.Context, string) (*domain.RFP, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRFPRepoFake) List(context.Context, domain.RFPFilter) ([]domain.RFP, error) {
	return nil, errors.New("not implemented")
}

func (f *ingestRFPRepoFake) UpdateStatus(context.Context, string, domain.RFPStatus) (*domain.RFP, error) {
	return nil, errors.New("not implemented")
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishRFPActivated(_ context.Context, rfpID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, rfpID)
	return nil
}

func (f *queueFake) SubscribeRFPActivated(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type condenserFake struct {
	suffix string
}

func (f *condenserFake) Condense(text string) string {
	return text + f.suffix
}

func extractedDocForTest() *domain.ExtractedDocument {
	return &domain.ExtractedDocument{
		ProjectTitle:           "Extracted Title",
		SolicitationNumber:     "RFP-TEST1234",
		Agency:                 "DoD",
		DueDate:                "2026-10-01",
		Budget:                 domain.Budget{Min: 1, Max: 2, Currency: "USD"},
		RequiredCapabilities:   []string{"Networking"},
		RequiredCertifications: []string{},
		Categories:             []string{"Defense", "IT"},
		Contact:                domain.Contact{Name: "Jane", Email: "jane@dod.mil", Phone: "555"},
	}
}

func newIngestUC(storage *storageFake, texts *textExtractorFake, extractor *rfpExtractorFake, repo *ingestRFPRepoFake, queue *queueFake) *IngestRFPUseCase {
	return NewIngestRFPUseCase(storage, texts, extractor, repo, queue, &condenserFake{})
}

func TestUploadCreatesActiveRFPAndPublishes(t *testing.T) {
	storage := &storageFake{}
	texts := &textExtractorFake{text: "document body"}
	extractor := &rfpExtractorFake{doc: extractedDocForTest()}
	repo := &ingestRFPRepoFake{}
	queue := &queueFake{}
	uc := newIngestUC(storage, texts, extractor, repo, queue)

	rfp, extracted, err := uc.Upload(context.Background(), "solicitation 1.pdf", bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rfp.Status != domain.RFPStatusActive {
		t.Fatalf("expected active status, got %q", rfp.Status)
	}
	if rfp.DocumentKey != storage.savedKey {
		t.Fatalf("expected document key %q, got %q", storage.savedKey, rfp.DocumentKey)
	}
	if !strings.Contains(storage.savedKey, "_solicitation_1.pdf") {
		t.Fatalf("expected sanitized key suffix, got %q", storage.savedKey)
	}
	if extracted.ProjectTitle != "Extracted Title" {
		t.Fatalf("unexpected extraction %+v", extracted)
	}
	if rfp.DueDate == nil {
		t.Fatalf("expected parsed due date")
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if len(queue.published) != 1 || queue.published[0] != rfp.ID {
		t.Fatalf("expected activation event for %s, got %v", rfp.ID, queue.published)
	}
}

func TestUploadCondensesTextBeforeExtraction(t *testing.T) {
	storage := &storageFake{}
	texts := &textExtractorFake{text: "raw text"}
	extractor := &rfpExtractorFake{doc: extractedDocForTest()}
	uc := NewIngestRFPUseCase(storage, texts, extractor, &ingestRFPRepoFake{}, &queueFake{}, &condenserFake{suffix: " [condensed]"})

	_, _, err := uc.Upload(context.Background(), "doc.txt", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if extractor.received != "raw text [condensed]" {
		t.Fatalf("expected condensed text, got %q", extractor.received)
	}
}

func TestUploadRejectsEmptyDocumentText(t *testing.T) {
	storage := &storageFake{}
	texts := &textExtractorFake{text: "   \n "}
	uc := newIngestUC(storage, texts, &rfpExtractorFake{}, &ingestRFPRepoFake{}, &queueFake{})

	_, _, err := uc.Upload(context.Background(), "doc.txt", bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadQueueErrorSurfaces(t *testing.T) {
	storage := &storageFake{}
	texts := &textExtractorFake{text: "body"}
	extractor := &rfpExtractorFake{doc: extractedDocForTest()}
	queue := &queueFake{err: errors.New("queue down")}
	uc := newIngestUC(storage, texts, extractor, &ingestRFPRepoFake{}, queue)

	_, _, err := uc.Upload(context.Background(), "doc.txt", bytes.NewBufferString("x"))
	if err == nil || !strings.Contains(err.Error(), "publish activation event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestPreviewDeletesStoredDocumentAndPersistsNothing(t *testing.T) {
	storage := &storageFake{}
	texts := &textExtractorFake{text: "body"}
	extractor := &rfpExtractorFake{doc: extractedDocForTest()}
	repo := &ingestRFPRepoFake{}
	queue := &queueFake{}
	uc := newIngestUC(storage, texts, extractor, repo, queue)

	extracted, err := uc.Preview(context.Background(), "doc.txt", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if extracted.ProjectTitle != "Extracted Title" {
		t.Fatalf("unexpected extraction %+v", extracted)
	}
	if storage.deletedKey != storage.savedKey {
		t.Fatalf("expected stored document deleted, got %q", storage.deletedKey)
	}
	if repo.created != nil {
		t.Fatalf("expected no rfp persisted")
	}
	if len(queue.published) != 0 {
		t.Fatalf("expected no activation event")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report 1.txt":        "report_1.txt",
		"../../../etc/passwd": "passwd",
		"résumé.pdf":          "r_sum_.pdf",
		"":                    "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
