package domain

// FieldSource records where each extracted field's value came from.
type FieldSource string

const (
	FieldExtracted FieldSource = "extracted"
	FieldInferred  FieldSource = "inferred"
	FieldDefault   FieldSource = "default"
)

// ExtractedDocument is the normalized output of document extraction before
// it becomes an RFP. DueDate stays a string until ingestion parses it.
type ExtractedDocument struct {
	ProjectTitle           string                 `json:"project_title"`
	SolicitationNumber     string                 `json:"solicitation_number"`
	Agency                 string                 `json:"agency"`
	DueDate                string                 `json:"due_date,omitempty"`
	Budget                 Budget                 `json:"budget"`
	SecurityClearance      string                 `json:"security_clearance"`
	Timeline               string                 `json:"timeline"`
	Description            string                 `json:"description"`
	RequiredCapabilities   []string               `json:"required_capabilities"`
	RequiredCertifications []string               `json:"required_certifications"`
	Categories             []string               `json:"categories"`
	Contact                Contact                `json:"contact"`
	FieldSources           map[string]FieldSource `json:"field_sources"`
}

func (d *ExtractedDocument) MarkField(name string, source FieldSource) {
	if d.FieldSources == nil {
		d.FieldSources = make(map[string]FieldSource)
	}
	d.FieldSources[name] = source
}
