package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

type VendorRepository struct {
	db *sql.DB
}

func NewVendorRepository(db *sql.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

const vendorColumns = `id, name, location, clearance_level, capabilities, certifications,
specialties, past_performance_score, employees_count, total_contract_value, created_at`

func (r *VendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	capabilities, err := json.Marshal(vendor.Capabilities)
	if err != nil {
		return fmt.Errorf("marshal capabilities: %w", err)
	}
	certifications, err := json.Marshal(vendor.Certifications)
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	specialties, err := json.Marshal(vendor.Specialties)
	if err != nil {
		return fmt.Errorf("marshal specialties: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO vendors (`+vendorColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		vendor.ID, vendor.Name, vendor.Location, vendor.ClearanceLevel,
		capabilities, certifications, specialties,
		vendor.PastPerformanceScore, vendor.EmployeeBand, vendor.TotalContractValue,
		vendor.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+vendorColumns+`
FROM vendors
WHERE id = $1
`, id)

	vendor, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrVendorNotFound, "get vendor by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan vendor: %w", err)
	}
	return vendor, nil
}

func (r *VendorRepository) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+vendorColumns+`
FROM vendors
ORDER BY name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Vendor, 0)
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, *vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return out, nil
}

func scanVendor(row rowScanner) (*domain.Vendor, error) {
	var vendor domain.Vendor
	var capabilitiesRaw, certificationsRaw, specialtiesRaw []byte
	var location, clearance, employeeBand, contractValue sql.NullString

	err := row.Scan(
		&vendor.ID, &vendor.Name, &location, &clearance,
		&capabilitiesRaw, &certificationsRaw, &specialtiesRaw,
		&vendor.PastPerformanceScore, &employeeBand, &contractValue,
		&vendor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	vendor.Location = location.String
	vendor.ClearanceLevel = clearance.String
	vendor.EmployeeBand = employeeBand.String
	vendor.TotalContractValue = contractValue.String

	if err := json.Unmarshal(capabilitiesRaw, &vendor.Capabilities); err != nil {
		return nil, fmt.Errorf("unmarshal capabilities: %w", err)
	}
	if err := json.Unmarshal(certificationsRaw, &vendor.Certifications); err != nil {
		return nil, fmt.Errorf("unmarshal certifications: %w", err)
	}
	if err := json.Unmarshal(specialtiesRaw, &vendor.Specialties); err != nil {
		return nil, fmt.Errorf("unmarshal specialties: %w", err)
	}
	return &vendor, nil
}
