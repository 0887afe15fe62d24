package usecase

import (
	"testing"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

func TestRecoverJSONObjectPlain(t *testing.T) {
	obj, err := RecoverJSONObject(`{"a":1}`)
	if err != nil {
		t.Fatalf("RecoverJSONObject() error = %v", err)
	}
	if string(obj) != `{"a":1}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestRecoverJSONObjectStripsFencedBlock(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"score\": 85}\n```\nLet me know."
	obj, err := RecoverJSONObject(raw)
	if err != nil {
		t.Fatalf("RecoverJSONObject() error = %v", err)
	}
	if string(obj) != `{"score": 85}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestRecoverJSONObjectSlicesSurroundingProse(t *testing.T) {
	raw := `Sure! The extraction is {"title":"x","nested":{"b":2}} as requested.`
	obj, err := RecoverJSONObject(raw)
	if err != nil {
		t.Fatalf("RecoverJSONObject() error = %v", err)
	}
	if string(obj) != `{"title":"x","nested":{"b":2}}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestRecoverJSONObjectRejectsEmptyInput(t *testing.T) {
	_, err := RecoverJSONObject("   \n\t ")
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestRecoverJSONObjectRejectsMissingBoundaries(t *testing.T) {
	_, err := RecoverJSONObject("no object here")
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestRecoverJSONObjectRejectsInvalidCandidate(t *testing.T) {
	_, err := RecoverJSONObject(`{"a": 1,,}`)
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}
