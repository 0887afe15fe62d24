package domain

import "time"

// Vendor is one contractor in the roster every activated RFP is scored
// against. EmployeeBand is a label such as "50-200", not a count.
type Vendor struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Location             string    `json:"location"`
	ClearanceLevel       string    `json:"clearance_level"`
	Capabilities         []string  `json:"capabilities"`
	Certifications       []string  `json:"certifications"`
	Specialties          []string  `json:"specialties"`
	PastPerformanceScore int       `json:"past_performance_score"`
	EmployeeBand         string    `json:"employees_count"`
	TotalContractValue   string    `json:"total_contract_value"`
	CreatedAt            time.Time `json:"created_at"`
}
