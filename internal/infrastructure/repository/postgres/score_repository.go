package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

// PendingRationale fills placeholder rows while a batch run is in flight.
const PendingRationale = "Pending analysis"

type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

const scoreColumns = `rfp_id, vendor_id, score, rationale, factors, win_probability,
risk_level, competition_level, estimated_cost, reasons, source, updated_at`

func (r *ScoreRepository) Upsert(ctx context.Context, score domain.CompatibilityScore) error {
	factors, err := marshalNullable(score.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	reasons, err := marshalNullable(score.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO compatibility_scores (`+scoreColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (rfp_id, vendor_id) DO UPDATE SET
	score = EXCLUDED.score,
	rationale = EXCLUDED.rationale,
	factors = EXCLUDED.factors,
	win_probability = EXCLUDED.win_probability,
	risk_level = EXCLUDED.risk_level,
	competition_level = EXCLUDED.competition_level,
	estimated_cost = EXCLUDED.estimated_cost,
	reasons = EXCLUDED.reasons,
	source = EXCLUDED.source,
	updated_at = EXCLUDED.updated_at
`,
		score.RFPID, score.VendorID, score.Score, score.Rationale,
		factors, nullableInt(score.WinProbability),
		score.RiskLevel, score.CompetitionLevel, score.EstimatedCost,
		reasons, string(score.Source), score.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert compatibility score: %w", err)
	}
	return nil
}

// InitPending writes placeholder rows so listings show every pair as soon as
// a batch starts. Existing real scores are left untouched.
func (r *ScoreRepository) InitPending(ctx context.Context, rfpID string, vendorIDs []string) error {
	if len(vendorIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, vendorID := range vendorIDs {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO compatibility_scores (rfp_id, vendor_id, score, rationale, source, updated_at)
VALUES ($1, $2, 0, $3, $4, $5)
ON CONFLICT (rfp_id, vendor_id) DO NOTHING
`, rfpID, vendorID, PendingRationale, string(domain.ScoreSourcePending), now)
		if err != nil {
			return fmt.Errorf("init pending score for vendor %s: %w", vendorID, err)
		}
	}
	return nil
}

func (r *ScoreRepository) ListByRFP(ctx context.Context, rfpID string, orderByScore bool) ([]domain.CompatibilityScore, error) {
	order := "vendor_id ASC"
	if orderByScore {
		order = "score DESC"
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+scoreColumns+`
FROM compatibility_scores
WHERE rfp_id = $1
ORDER BY `+order, rfpID)
	if err != nil {
		return nil, fmt.Errorf("list scores by rfp: %w", err)
	}
	defer rows.Close()

	return collectScores(rows)
}

func (r *ScoreRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.CompatibilityScore, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+scoreColumns+`
FROM compatibility_scores
WHERE vendor_id = $1
ORDER BY score DESC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list scores by vendor: %w", err)
	}
	defer rows.Close()

	return collectScores(rows)
}

func collectScores(rows *sql.Rows) ([]domain.CompatibilityScore, error) {
	out := make([]domain.CompatibilityScore, 0)
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, *score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}

func scanScore(row rowScanner) (*domain.CompatibilityScore, error) {
	var score domain.CompatibilityScore
	var source string
	var factorsRaw, reasonsRaw []byte
	var rationale, riskLevel, competitionLevel, estimatedCost sql.NullString
	var winProbability sql.NullInt64

	err := row.Scan(
		&score.RFPID, &score.VendorID, &score.Score, &rationale,
		&factorsRaw, &winProbability,
		&riskLevel, &competitionLevel, &estimatedCost,
		&reasonsRaw, &source, &score.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	score.Rationale = rationale.String
	score.RiskLevel = riskLevel.String
	score.CompetitionLevel = competitionLevel.String
	score.EstimatedCost = estimatedCost.String
	score.Source = domain.ScoreSource(source)
	if winProbability.Valid {
		wp := int(winProbability.Int64)
		score.WinProbability = &wp
	}
	if len(factorsRaw) > 0 {
		if err := json.Unmarshal(factorsRaw, &score.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
	}
	if len(reasonsRaw) > 0 {
		if err := json.Unmarshal(reasonsRaw, &score.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
	}
	return &score, nil
}

func marshalNullable(v any) (any, error) {
	switch value := v.(type) {
	case map[string]float64:
		if value == nil {
			return nil, nil
		}
	case []string:
		if value == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
