package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

// ManageRFPUseCase covers manual RFP creation and lifecycle updates. A
// transition to active publishes the event that triggers batch scoring.
type ManageRFPUseCase struct {
	rfps  ports.RFPRepository
	queue ports.MessageQueue
}

func NewManageRFPUseCase(rfps ports.RFPRepository, queue ports.MessageQueue) *ManageRFPUseCase {
	return &ManageRFPUseCase{rfps: rfps, queue: queue}
}

func (uc *ManageRFPUseCase) Create(ctx context.Context, rfp domain.RFP) (*domain.RFP, error) {
	if err := validateRFP(&rfp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rfp.ID = uuid.NewString()
	rfp.CreatedAt = now
	rfp.UpdatedAt = now
	if rfp.Status == "" {
		rfp.Status = domain.RFPStatusDraft
	}
	if rfp.SolicitationNumber == "" {
		rfp.SolicitationNumber = placeholderSolicitationNumber()
	}
	if rfp.Budget.Currency == "" {
		rfp.Budget.Currency = "USD"
	}

	if err := uc.rfps.Create(ctx, &rfp); err != nil {
		return nil, fmt.Errorf("create rfp: %w", err)
	}

	if rfp.Status == domain.RFPStatusActive {
		if err := uc.queue.PublishRFPActivated(ctx, rfp.ID); err != nil {
			return nil, fmt.Errorf("publish activation event: %w", err)
		}
	}
	return &rfp, nil
}

func (uc *ManageRFPUseCase) UpdateStatus(ctx context.Context, id string, status domain.RFPStatus) (*domain.RFP, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update rfp status", errors.New("rfp id is required"))
	}
	if !status.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update rfp status", fmt.Errorf("unknown status %q", status))
	}

	rfp, err := uc.rfps.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update rfp status: %w", err)
	}

	if status == domain.RFPStatusActive {
		if err := uc.queue.PublishRFPActivated(ctx, id); err != nil {
			return nil, fmt.Errorf("publish activation event: %w", err)
		}
	}
	return rfp, nil
}

func validateRFP(rfp *domain.RFP) error {
	var missing []string
	if strings.TrimSpace(rfp.ProjectTitle) == "" {
		missing = append(missing, "project_title")
	}
	if strings.TrimSpace(rfp.Agency) == "" {
		missing = append(missing, "agency")
	}
	if rfp.DueDate == nil {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate rfp",
			fmt.Errorf("required fields: %s", strings.Join(missing, ", ")))
	}
	if rfp.Status != "" && !rfp.Status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "validate rfp", fmt.Errorf("unknown status %q", rfp.Status))
	}
	if rfp.Budget.Min > rfp.Budget.Max && rfp.Budget.Max != 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate rfp",
			fmt.Errorf("budget min %d exceeds max %d", rfp.Budget.Min, rfp.Budget.Max))
	}
	return nil
}
