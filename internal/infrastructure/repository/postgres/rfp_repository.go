package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

const pgUniqueViolation = "23505"

type RFPRepository struct {
	db *sql.DB
}

func NewRFPRepository(db *sql.DB) *RFPRepository {
	return &RFPRepository{db: db}
}

const rfpColumns = `id, solicitation_number, project_title, agency, due_date,
budget_min, budget_max, currency, security_clearance, timeline, description,
required_capabilities, required_certifications, categories,
contact_name, contact_email, contact_phone, status, document_key, created_at, updated_at`

func (r *RFPRepository) Create(ctx context.Context, rfp *domain.RFP) error {
	err := r.insert(ctx, rfp)
	if err == nil {
		return nil
	}

	// Extracted solicitation numbers collide; retry once with a unique
	// suffix instead of failing the whole ingestion.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "solicitation") {
		rfp.SolicitationNumber = fmt.Sprintf("%s-%s", rfp.SolicitationNumber, strings.ToUpper(uuid.NewString()[:8]))
		if retryErr := r.insert(ctx, rfp); retryErr != nil {
			return fmt.Errorf("insert rfp after duplicate solicitation number: %w", retryErr)
		}
		return nil
	}
	return fmt.Errorf("insert rfp: %w", err)
}

func (r *RFPRepository) insert(ctx context.Context, rfp *domain.RFP) error {
	capabilities, err := json.Marshal(rfp.RequiredCapabilities)
	if err != nil {
		return fmt.Errorf("marshal capabilities: %w", err)
	}
	certifications, err := json.Marshal(rfp.RequiredCertifications)
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	categories, err := json.Marshal(rfp.Categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO rfps (`+rfpColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
`,
		rfp.ID, rfp.SolicitationNumber, rfp.ProjectTitle, rfp.Agency, rfp.DueDate,
		rfp.Budget.Min, rfp.Budget.Max, rfp.Budget.Currency,
		rfp.SecurityClearance, rfp.Timeline, rfp.Description,
		capabilities, certifications, categories,
		rfp.Contact.Name, rfp.Contact.Email, rfp.Contact.Phone,
		string(rfp.Status), rfp.DocumentKey, rfp.CreatedAt, rfp.UpdatedAt,
	)
	return err
}

func (r *RFPRepository) GetByID(ctx context.Context, id string) (*domain.RFP, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+rfpColumns+`
FROM rfps
WHERE id = $1
`, id)

	rfp, err := scanRFP(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRFPNotFound, "get rfp by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan rfp: %w", err)
	}
	return rfp, nil
}

func (r *RFPRepository) List(ctx context.Context, filter domain.RFPFilter) ([]domain.RFP, error) {
	query := `SELECT ` + rfpColumns + ` FROM rfps`
	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Agency != "" {
		args = append(args, filter.Agency)
		conditions = append(conditions, fmt.Sprintf("agency = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rfps: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RFP, 0)
	for rows.Next() {
		rfp, err := scanRFP(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rfp: %w", err)
		}
		out = append(out, *rfp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rfps: %w", err)
	}
	return out, nil
}

func (r *RFPRepository) UpdateStatus(ctx context.Context, id string, status domain.RFPStatus) (*domain.RFP, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE rfps
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update rfp status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update rfp status rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.WrapError(domain.ErrRFPNotFound, "update rfp status", fmt.Errorf("id=%s", id))
	}
	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRFP(row rowScanner) (*domain.RFP, error) {
	var rfp domain.RFP
	var status string
	var capabilitiesRaw, certificationsRaw, categoriesRaw []byte
	var dueDate sql.NullTime
	var clearance, timeline, description, contactName, contactEmail, contactPhone, documentKey sql.NullString

	err := row.Scan(
		&rfp.ID, &rfp.SolicitationNumber, &rfp.ProjectTitle, &rfp.Agency, &dueDate,
		&rfp.Budget.Min, &rfp.Budget.Max, &rfp.Budget.Currency,
		&clearance, &timeline, &description,
		&capabilitiesRaw, &certificationsRaw, &categoriesRaw,
		&contactName, &contactEmail, &contactPhone,
		&status, &documentKey, &rfp.CreatedAt, &rfp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		due := dueDate.Time
		rfp.DueDate = &due
	}
	rfp.SecurityClearance = clearance.String
	rfp.Timeline = timeline.String
	rfp.Description = description.String
	rfp.Contact = domain.Contact{Name: contactName.String, Email: contactEmail.String, Phone: contactPhone.String}
	rfp.DocumentKey = documentKey.String
	rfp.Status = domain.RFPStatus(status)

	if err := json.Unmarshal(capabilitiesRaw, &rfp.RequiredCapabilities); err != nil {
		return nil, fmt.Errorf("unmarshal capabilities: %w", err)
	}
	if err := json.Unmarshal(certificationsRaw, &rfp.RequiredCertifications); err != nil {
		return nil, fmt.Errorf("unmarshal certifications: %w", err)
	}
	if err := json.Unmarshal(categoriesRaw, &rfp.Categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	return &rfp, nil
}
