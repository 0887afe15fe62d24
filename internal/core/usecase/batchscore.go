package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

const (
	defaultMaxConcurrent  = 8
	defaultNotifyMinScore = 70
)

// BatchScoreUseCase fans pair scoring out across the full vendor roster for
// one RFP. Each vendor's outcome is persisted independently; a failing
// vendor never blocks or aborts its siblings. The aggregated BatchReport
// makes swallowed per-vendor failures observable.
type BatchScoreUseCase struct {
	rfps          ports.RFPRepository
	vendors       ports.VendorRepository
	scores        ports.ScoreRepository
	notifications ports.NotificationStore
	pair          ports.PairScorer

	maxConcurrent  int
	notifyMinScore int
}

func NewBatchScoreUseCase(
	rfps ports.RFPRepository,
	vendors ports.VendorRepository,
	scores ports.ScoreRepository,
	notifications ports.NotificationStore,
	pair ports.PairScorer,
	maxConcurrent int,
	notifyMinScore int,
) *BatchScoreUseCase {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if notifyMinScore <= 0 {
		notifyMinScore = defaultNotifyMinScore
	}
	return &BatchScoreUseCase{
		rfps:           rfps,
		vendors:        vendors,
		scores:         scores,
		notifications:  notifications,
		pair:           pair,
		maxConcurrent:  maxConcurrent,
		notifyMinScore: notifyMinScore,
	}
}

func (uc *BatchScoreUseCase) ScoreAllVendors(ctx context.Context, rfpID string) (*domain.BatchReport, error) {
	if strings.TrimSpace(rfpID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "score all vendors", errors.New("rfp id is required"))
	}

	rfp, err := uc.rfps.GetByID(ctx, rfpID)
	if err != nil {
		return nil, fmt.Errorf("fetch rfp: %w", err)
	}

	vendors, err := uc.vendors.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	report := &domain.BatchReport{RFPID: rfpID, VendorCount: len(vendors)}
	if len(vendors) == 0 {
		return report, nil
	}

	vendorIDs := make([]string, len(vendors))
	for i, v := range vendors {
		vendorIDs[i] = v.ID
	}
	if err := uc.scores.InitPending(ctx, rfpID, vendorIDs); err != nil {
		// Placeholder rows are cosmetic; scoring proceeds without them.
		slog.Warn("init pending scores failed", "rfp_id", rfpID, "error", err)
	}

	start := time.Now()
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.maxConcurrent)

	for _, vendor := range vendors {
		vendor := vendor
		group.Go(func() error {
			outcome := uc.scoreVendor(groupCtx, vendor, *rfp)
			mu.Lock()
			outcome.applyTo(report)
			mu.Unlock()
			return nil
		})
	}

	// Tasks never return errors; Wait is a join point only.
	_ = group.Wait()
	report.Elapsed = time.Since(start)
	return report, nil
}

type vendorOutcome struct {
	source        domain.ScoreSource
	persisted     bool
	persistFailed bool
	notified      bool
	notifyFailed  bool
}

func (o vendorOutcome) applyTo(report *domain.BatchReport) {
	switch o.source {
	case domain.ScoreSourceJudge:
		report.JudgeScored++
	case domain.ScoreSourceFallback:
		report.FallbackScored++
	}
	if o.persisted {
		report.Persisted++
	}
	if o.persistFailed {
		report.PersistFailures++
	}
	if o.notified {
		report.NotificationsSent++
	}
	if o.notifyFailed {
		report.NotificationFailures++
	}
}

func (uc *BatchScoreUseCase) scoreVendor(ctx context.Context, vendor domain.Vendor, rfp domain.RFP) vendorOutcome {
	score := uc.pair.Score(ctx, vendor, rfp)
	outcome := vendorOutcome{source: score.Source}

	if err := uc.scores.Upsert(ctx, score); err != nil {
		slog.Error("persist compatibility score failed",
			"rfp_id", rfp.ID, "vendor_id", vendor.ID, "error", err)
		outcome.persistFailed = true
		return outcome
	}
	outcome.persisted = true

	// Only a judge-derived high score qualifies as a match worth surfacing;
	// fallback estimates stay quiet regardless of value.
	if score.Source != domain.ScoreSourceJudge || score.Score < uc.notifyMinScore {
		return outcome
	}

	notification := domain.Notification{
		UserType: "vendor",
		UserID:   vendor.ID,
		RFPID:    rfp.ID,
		Type:     "new_match",
		Title:    "New High-Match RFP Available",
		Message:  fmt.Sprintf("A new RFP matching your capabilities (%d%% match) is now available", score.Score),
		Metadata: map[string]any{
			"match_score": score.Score,
			"rfp_title":   rfp.ProjectTitle,
		},
	}
	if err := uc.notifications.Notify(ctx, notification); err != nil {
		slog.Error("notify vendor failed",
			"rfp_id", rfp.ID, "vendor_id", vendor.ID, "error", err)
		outcome.notifyFailed = true
		return outcome
	}
	outcome.notified = true
	return outcome
}
