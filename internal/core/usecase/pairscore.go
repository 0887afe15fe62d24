package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

// FallbackRationale marks a score produced without the judge.
const FallbackRationale = "Fallback score - AI analysis unavailable"

const defaultScoreTimeout = 15 * time.Second

// PairScoreUseCase evaluates one (vendor, rfp) pair within a bounded time
// budget. Judge success, judge failure, and timeout all converge to a
// result; the call never returns an error.
type PairScoreUseCase struct {
	judge   ports.ScoringJudge
	timeout time.Duration
}

func NewPairScoreUseCase(judge ports.ScoringJudge, timeout time.Duration) *PairScoreUseCase {
	if timeout <= 0 {
		timeout = defaultScoreTimeout
	}
	return &PairScoreUseCase{judge: judge, timeout: timeout}
}

func (uc *PairScoreUseCase) Score(ctx context.Context, vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore {
	profile := RenderVendorProfile(vendor)
	requirements := RenderRFPRequirements(rfp)

	type judgeReply struct {
		raw string
		err error
	}
	// Buffered so a judge reply arriving after the deadline is dropped
	// without leaking the goroutine. The judge call itself is not
	// cancelled; bounded latency wins over avoided wasted work.
	replyCh := make(chan judgeReply, 1)
	go func() {
		raw, err := uc.judge.JudgeCompatibility(ctx, profile, requirements)
		replyCh <- judgeReply{raw: raw, err: err}
	}()

	timer := time.NewTimer(uc.timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		if reply.err != nil {
			slog.Warn("scoring judge failed",
				"rfp_id", rfp.ID, "vendor_id", vendor.ID, "error", reply.err)
			break
		}
		if score, ok := uc.mapJudgeAnalysis(reply.raw, vendor, rfp); ok {
			return score
		}
		slog.Warn("scoring judge returned unrecoverable output",
			"rfp_id", rfp.ID, "vendor_id", vendor.ID)
	case <-timer.C:
		slog.Warn("scoring judge timed out",
			"rfp_id", rfp.ID, "vendor_id", vendor.ID, "budget", uc.timeout)
	case <-ctx.Done():
	}

	return uc.fallbackScore(vendor, rfp)
}

// judgeAnalysis is the expected shape of the scoring judge's JSON output.
type judgeAnalysis struct {
	OverallScore     float64            `json:"overall_score"`
	Rationale        string             `json:"rationale"`
	DetailedScores   map[string]float64 `json:"detailed_scores"`
	WinProbability   *float64           `json:"win_probability"`
	RiskLevel        string             `json:"risk_level"`
	CompetitionLevel string             `json:"competition_level"`
	EstimatedCost    string             `json:"estimated_cost"`
	Strengths        []string           `json:"strengths"`
}

func (uc *PairScoreUseCase) mapJudgeAnalysis(raw string, vendor domain.Vendor, rfp domain.RFP) (domain.CompatibilityScore, bool) {
	obj, err := RecoverJSONObject(raw)
	if err != nil {
		return domain.CompatibilityScore{}, false
	}
	var analysis judgeAnalysis
	if err := json.Unmarshal(obj, &analysis); err != nil {
		return domain.CompatibilityScore{}, false
	}

	score := domain.CompatibilityScore{
		RFPID:            rfp.ID,
		VendorID:         vendor.ID,
		Score:            clampScore(analysis.OverallScore),
		Rationale:        analysis.Rationale,
		Factors:          analysis.DetailedScores,
		RiskLevel:        levelOrMedium(analysis.RiskLevel),
		CompetitionLevel: levelOrMedium(analysis.CompetitionLevel),
		EstimatedCost:    analysis.EstimatedCost,
		Reasons:          analysis.Strengths,
		Source:           domain.ScoreSourceJudge,
		UpdatedAt:        time.Now().UTC(),
	}
	if score.Rationale == "" {
		score.Rationale = "AI-generated compatibility analysis"
	}
	if analysis.WinProbability != nil {
		wp := clampScore(*analysis.WinProbability)
		score.WinProbability = &wp
	}
	return score, true
}

func (uc *PairScoreUseCase) fallbackScore(vendor domain.Vendor, rfp domain.RFP) domain.CompatibilityScore {
	value := FallbackScore(vendor, rfp)
	winProbability := max(0, value-20)
	return domain.CompatibilityScore{
		RFPID:          rfp.ID,
		VendorID:       vendor.ID,
		Score:          value,
		Rationale:      FallbackRationale,
		WinProbability: &winProbability,
		RiskLevel:      domain.LevelMedium,
		Source:         domain.ScoreSourceFallback,
		UpdatedAt:      time.Now().UTC(),
	}
}

// RenderVendorProfile builds the canonical vendor block consumed by the
// scoring judge prompt.
func RenderVendorProfile(v domain.Vendor) string {
	return fmt.Sprintf(`Name: %s
Capabilities: %s
Clearance: %s
Certifications: %s
Experience: %d%% performance score
Location: %s
Company Size: %s
Specialties: %s`,
		orDefault(v.Name, "Unknown"),
		joinOrNone(v.Capabilities),
		orDefault(v.ClearanceLevel, "None"),
		joinOrNone(v.Certifications),
		v.PastPerformanceScore,
		orDefault(v.Location, "Not specified"),
		orDefault(v.EmployeeBand, "Not specified"),
		joinOrNone(v.Specialties),
	)
}

// RenderRFPRequirements builds the canonical requirements block consumed by
// the scoring judge prompt.
func RenderRFPRequirements(r domain.RFP) string {
	return fmt.Sprintf(`Project: %s
Budget: %d - %d %s
Clearance Required: %s
Timeline: %s
Requirements: %s
Categories: %s
Description: %s`,
		orDefault(r.ProjectTitle, "Unknown"),
		r.Budget.Min,
		r.Budget.Max,
		orDefault(r.Budget.Currency, "USD"),
		orDefault(r.SecurityClearance, "None"),
		orDefault(r.Timeline, "Not specified"),
		joinOrNone(r.RequiredCapabilities),
		joinOrNone(r.Categories),
		orDefault(r.Description, "No description"),
	)
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}

func levelOrMedium(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case domain.LevelLow:
		return domain.LevelLow
	case domain.LevelHigh:
		return domain.LevelHigh
	default:
		return domain.LevelMedium
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
