package domain

import "time"

type RFPStatus string

const (
	RFPStatusDraft     RFPStatus = "draft"
	RFPStatusActive    RFPStatus = "active"
	RFPStatusClosed    RFPStatus = "closed"
	RFPStatusCancelled RFPStatus = "cancelled"
)

func (s RFPStatus) Valid() bool {
	switch s {
	case RFPStatusDraft, RFPStatusActive, RFPStatusClosed, RFPStatusCancelled:
		return true
	default:
		return false
	}
}

// Budget amounts are whole units of Currency. Max == 0 means open-ended.
type Budget struct {
	Min      int64  `json:"min"`
	Max      int64  `json:"max"`
	Currency string `json:"currency"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RFP is a government solicitation as stored and scored.
type RFP struct {
	ID                     string     `json:"id"`
	SolicitationNumber     string     `json:"solicitation_number"`
	ProjectTitle           string     `json:"project_title"`
	Agency                 string     `json:"agency"`
	DueDate                *time.Time `json:"due_date,omitempty"`
	Budget                 Budget     `json:"budget"`
	SecurityClearance      string     `json:"security_clearance"`
	Timeline               string     `json:"timeline"`
	Description            string     `json:"description"`
	RequiredCapabilities   []string   `json:"required_capabilities"`
	RequiredCertifications []string   `json:"required_certifications"`
	Categories             []string   `json:"categories"`
	Contact                Contact    `json:"contact"`
	Status                 RFPStatus  `json:"status"`
	DocumentKey            string     `json:"document_key,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type RFPFilter struct {
	Status RFPStatus
	Agency string
}
