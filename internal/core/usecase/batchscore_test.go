package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

type rfpRepoFake struct {
	rfp *domain.RFP
	err error
}

func (f *rfpRepoFake) Create(context.Context, *domain.RFP) error {
	return errors.New("not implemented")
}

func (f *rfpRepoFake) GetByID(_ context.Context, id string) (*domain.RFP, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rfp == nil || f.rfp.ID != id {
		return nil, domain.WrapError(domain.ErrRFPNotFound, "get rfp by id", errors.New(id))
	}
	return f.rfp, nil
}

func (f *rfpRepoFake) List(context.Context, domain.RFPFilter) ([]domain.RFP, error) {
	return nil, errors.New("not implemented")
}

func (f *rfpRepoFake) UpdateStatus(context.Context, string, domain.RFPStatus) (*domain.RFP, error) {
	return nil, errors.New("not implemented")
}

type vendorRepoFake struct {
	vendors []domain.Vendor
	err     error
}

func (f *vendorRepoFake) Create(context.Context, *domain.Vendor) error {
	return errors.New("not implemented")
}

func (f *vendorRepoFake) ListVendors(context.Context) ([]domain.Vendor, error) {
	return f.vendors, f.err
}

func (f *vendorRepoFake) GetByID(context.Context, string) (*domain.Vendor, error) {
	return nil, errors.New("not implemented")
}

type scoreRepoFake struct {
	mu          sync.Mutex
	upserts     []domain.CompatibilityScore
	pendingIDs  []string
	upsertErrFn func(score domain.CompatibilityScore) error
	pendingErr  error
}

func (f *scoreRepoFake) Upsert(_ context.Context, score domain.CompatibilityScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErrFn != nil {
		if err := f.upsertErrFn(score); err != nil {
			return err
		}
	}
	f.upserts = append(f.upserts, score)
	return nil
}

func (f *scoreRepoFake) InitPending(_ context.Context, _ string, vendorIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingIDs = vendorIDs
	return f.pendingErr
}

func (f *scoreRepoFake) ListByRFP(context.Context, string, bool) ([]domain.CompatibilityScore, error) {
	return nil, errors.New("not implemented")
}

func (f *scoreRepoFake) ListByVendor(context.Context, string) ([]domain.CompatibilityScore, error) {
	return nil, errors.New("not implemented")
}

type notificationStoreFake struct {
	mu       sync.Mutex
	notified []domain.Notification
	err      error
}

func (f *notificationStoreFake) Notify(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, n)
	return nil
}

func (f *notificationStoreFake) ListByVendor(context.Context, string, int) ([]domain.Notification, error) {
	return nil, errors.New("not implemented")
}

type pairScorerFake struct {
	scoreFn     func(vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *pairScorerFake) Score(_ context.Context, vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore {
	current := f.inFlight.Add(1)
	for {
		observed := f.maxInFlight.Load()
		if current <= observed || f.maxInFlight.CompareAndSwap(observed, current) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	defer f.inFlight.Add(-1)

	if f.scoreFn != nil {
		return f.scoreFn(vendor, rfp)
	}
	return domain.CompatibilityScore{
		RFPID:    rfp.ID,
		VendorID: vendor.ID,
		Score:    50,
		Source:   domain.ScoreSourceFallback,
	}
}

func makeVendors(n int) []domain.Vendor {
	vendors := make([]domain.Vendor, n)
	for i := range vendors {
		vendors[i] = domain.Vendor{ID: string(rune('a' + i)), Name: "Vendor"}
	}
	return vendors
}

func TestScoreAllVendorsRequiresRFPID(t *testing.T) {
	uc := NewBatchScoreUseCase(&rfpRepoFake{}, &vendorRepoFake{}, &scoreRepoFake{}, &notificationStoreFake{}, &pairScorerFake{}, 0, 0)

	_, err := uc.ScoreAllVendors(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreAllVendorsUnknownRFP(t *testing.T) {
	uc := NewBatchScoreUseCase(&rfpRepoFake{}, &vendorRepoFake{}, &scoreRepoFake{}, &notificationStoreFake{}, &pairScorerFake{}, 0, 0)

	_, err := uc.ScoreAllVendors(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrRFPNotFound) {
		t.Fatalf("expected ErrRFPNotFound, got %v", err)
	}
}

func TestScoreAllVendorsEmptyRoster(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1"}}
	uc := NewBatchScoreUseCase(rfps, &vendorRepoFake{}, &scoreRepoFake{}, &notificationStoreFake{}, &pairScorerFake{}, 0, 0)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.VendorCount != 0 || report.Persisted != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestScoreAllVendorsPersistsEveryVendor(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1", ProjectTitle: "Upgrade"}}
	vendors := &vendorRepoFake{vendors: makeVendors(10)}
	scores := &scoreRepoFake{}
	notifications := &notificationStoreFake{}
	pair := &pairScorerFake{}
	uc := NewBatchScoreUseCase(rfps, vendors, scores, notifications, pair, 3, 70)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.VendorCount != 10 || report.Persisted != 10 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.FallbackScored != 10 {
		t.Fatalf("expected 10 fallback scored, got %d", report.FallbackScored)
	}
	if len(scores.pendingIDs) != 10 {
		t.Fatalf("expected pending rows for all vendors, got %d", len(scores.pendingIDs))
	}
	if got := pair.maxInFlight.Load(); got > 3 {
		t.Fatalf("expected at most 3 concurrent scorings, observed %d", got)
	}
}

func TestScoreAllVendorsFailingVendorDoesNotAbortSiblings(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1"}}
	vendors := &vendorRepoFake{vendors: makeVendors(5)}
	scores := &scoreRepoFake{
		upsertErrFn: func(score domain.CompatibilityScore) error {
			if score.VendorID == "c" {
				return errors.New("db write failed")
			}
			return nil
		},
	}
	uc := NewBatchScoreUseCase(rfps, vendors, scores, &notificationStoreFake{}, &pairScorerFake{}, 2, 70)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.Persisted != 4 || report.PersistFailures != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestScoreAllVendorsNotifiesOnlyJudgeHighScores(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1", ProjectTitle: "Upgrade"}}
	vendors := &vendorRepoFake{vendors: makeVendors(4)}
	notifications := &notificationStoreFake{}
	pair := &pairScorerFake{
		scoreFn: func(vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore {
			switch vendor.ID {
			case "a":
				return domain.CompatibilityScore{RFPID: rfp.ID, VendorID: vendor.ID, Score: 90, Source: domain.ScoreSourceJudge}
			case "b":
				return domain.CompatibilityScore{RFPID: rfp.ID, VendorID: vendor.ID, Score: 60, Source: domain.ScoreSourceJudge}
			case "c":
				// High fallback score must stay quiet.
				return domain.CompatibilityScore{RFPID: rfp.ID, VendorID: vendor.ID, Score: 95, Source: domain.ScoreSourceFallback}
			default:
				return domain.CompatibilityScore{RFPID: rfp.ID, VendorID: vendor.ID, Score: 70, Source: domain.ScoreSourceJudge}
			}
		},
	}
	uc := NewBatchScoreUseCase(rfps, vendors, &scoreRepoFake{}, notifications, pair, 2, 70)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.NotificationsSent != 2 {
		t.Fatalf("expected 2 notifications, got %d", report.NotificationsSent)
	}
	for _, n := range notifications.notified {
		if n.UserID == "b" || n.UserID == "c" {
			t.Fatalf("unexpected notification for vendor %s", n.UserID)
		}
	}
}

func TestScoreAllVendorsNotificationFailureCounted(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1"}}
	vendors := &vendorRepoFake{vendors: makeVendors(1)}
	notifications := &notificationStoreFake{err: errors.New("insert failed")}
	pair := &pairScorerFake{
		scoreFn: func(vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore {
			return domain.CompatibilityScore{RFPID: rfp.ID, VendorID: vendor.ID, Score: 90, Source: domain.ScoreSourceJudge}
		},
	}
	uc := NewBatchScoreUseCase(rfps, vendors, &scoreRepoFake{}, notifications, pair, 1, 70)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.NotificationFailures != 1 || report.NotificationsSent != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestScoreAllVendorsProceedsWhenInitPendingFails(t *testing.T) {
	rfps := &rfpRepoFake{rfp: &domain.RFP{ID: "rfp-1"}}
	vendors := &vendorRepoFake{vendors: makeVendors(2)}
	scores := &scoreRepoFake{pendingErr: errors.New("placeholder failed")}
	uc := NewBatchScoreUseCase(rfps, vendors, scores, &notificationStoreFake{}, &pairScorerFake{}, 2, 70)

	report, err := uc.ScoreAllVendors(context.Background(), "rfp-1")
	if err != nil {
		t.Fatalf("ScoreAllVendors() error = %v", err)
	}
	if report.Persisted != 2 {
		t.Fatalf("expected scoring to proceed, got %+v", report)
	}
}
