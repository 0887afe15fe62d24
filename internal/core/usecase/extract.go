package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
)

const maxDescriptionLen = 200

// Ordered patterns for timeline inference; first match wins.
var timelinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)contract duration[:\s]*([^.\n]+)`),
	regexp.MustCompile(`(?i)project duration[:\s]*([^.\n]+)`),
	regexp.MustCompile(`(?i)timeline[:\s]*([^.\n]+)`),
	regexp.MustCompile(`(?i)(\d+)\s*months?`),
	regexp.MustCompile(`(?i)(\d+)\s*years?`),
}

var budgetAmountCleaner = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "")

// ExtractRFPUseCase turns unstructured document text into a structured
// record. The only caller-visible failure is a document-judge transport
// error; unparsable or partial judge output degrades to a default record.
type ExtractRFPUseCase struct {
	judge ports.DocumentJudge
}

func NewExtractRFPUseCase(judge ports.DocumentJudge) *ExtractRFPUseCase {
	return &ExtractRFPUseCase{judge: judge}
}

func (uc *ExtractRFPUseCase) Extract(ctx context.Context, text string) (*domain.ExtractedDocument, error) {
	response, err := uc.judge.ExtractRFP(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("document judge: %w", err)
	}

	obj, err := RecoverJSONObject(response)
	if err != nil {
		return defaultExtractedDocument(), nil
	}

	var payload extractionPayload
	if err := json.Unmarshal(obj, &payload); err != nil {
		return defaultExtractedDocument(), nil
	}

	doc := payload.toDocument()
	inferTimeline(doc, text)
	cleanContact(doc)
	inferCategories(doc)
	return doc, nil
}

// extractionPayload mirrors the schema requested from the judge. Budget
// amounts stay raw because models return them as numbers or formatted
// strings interchangeably.
type extractionPayload struct {
	ProjectTitle string `json:"project_title"`
	Budget       struct {
		Min      json.RawMessage `json:"min"`
		Max      json.RawMessage `json:"max"`
		Currency string          `json:"currency"`
	} `json:"budget"`
	SecurityClearance string `json:"security_clearance_required"`
	Timeline          string `json:"timeline"`
	Contact           struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact"`
	DueDate                string   `json:"due_date"`
	Agency                 string   `json:"agency"`
	SolicitationNumber     string   `json:"solicitation_number"`
	Description            string   `json:"description"`
	RequiredCapabilities   []string `json:"required_capabilities"`
	RequiredCertifications []string `json:"required_certifications"`
	Categories             []string `json:"categories"`
}

func (p *extractionPayload) toDocument() *domain.ExtractedDocument {
	doc := &domain.ExtractedDocument{
		RequiredCapabilities:   emptyIfNil(p.RequiredCapabilities),
		RequiredCertifications: emptyIfNil(p.RequiredCertifications),
		Categories:             emptyIfNil(p.Categories),
	}

	doc.ProjectTitle = pickString(doc, "project_title", p.ProjectTitle, "Extracted Document")
	doc.Agency = pickString(doc, "agency", p.Agency, "Unknown")
	doc.SecurityClearance = pickString(doc, "security_clearance", p.SecurityClearance, "Unknown")
	doc.Timeline = pickString(doc, "timeline", p.Timeline, "")
	doc.Description = pickString(doc, "description", p.Description, "No description available")
	if runes := []rune(doc.Description); len(runes) > maxDescriptionLen {
		doc.Description = string(runes[:maxDescriptionLen])
	}
	doc.SolicitationNumber = pickString(doc, "solicitation_number", p.SolicitationNumber, placeholderSolicitationNumber())
	doc.DueDate = pickString(doc, "due_date", p.DueDate, "")

	doc.Contact.Name = pickString(doc, "contact_name", p.Contact.Name, "Unknown")
	doc.Contact.Email = pickString(doc, "contact_email", p.Contact.Email, "unknown@example.com")
	doc.Contact.Phone = pickString(doc, "contact_phone", p.Contact.Phone, "Unknown")

	doc.Budget.Currency = pickString(doc, "currency", p.Budget.Currency, "USD")
	minAmount, minOK := coerceAmount(p.Budget.Min)
	maxAmount, maxOK := coerceAmount(p.Budget.Max)
	doc.Budget.Min, doc.Budget.Max = minAmount, maxAmount
	if doc.Budget.Min > doc.Budget.Max && doc.Budget.Max != 0 {
		doc.Budget.Min, doc.Budget.Max = doc.Budget.Max, doc.Budget.Min
	}
	if minOK || maxOK {
		doc.MarkField("budget", domain.FieldExtracted)
	} else {
		doc.MarkField("budget", domain.FieldDefault)
	}

	if len(doc.RequiredCapabilities) > 0 {
		doc.MarkField("required_capabilities", domain.FieldExtracted)
	} else {
		doc.MarkField("required_capabilities", domain.FieldDefault)
	}
	if len(doc.Categories) > 0 {
		doc.MarkField("categories", domain.FieldExtracted)
	} else {
		doc.MarkField("categories", domain.FieldDefault)
	}
	return doc
}

// coerceAmount accepts a JSON number or a formatted string such as
// "$1,250,000"; anything absent or unparsable becomes 0 with ok=false so
// provenance can distinguish a real zero from a missing amount.
func coerceAmount(raw json.RawMessage) (int64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int64(number), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = budgetAmountCleaner.Replace(strings.TrimSpace(s))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func inferTimeline(doc *domain.ExtractedDocument, sourceText string) {
	if strings.TrimSpace(doc.Timeline) != "" {
		return
	}
	for _, pattern := range timelinePatterns {
		if m := pattern.FindStringSubmatch(sourceText); m != nil {
			doc.Timeline = strings.TrimSpace(m[1])
			doc.MarkField("timeline", domain.FieldInferred)
			return
		}
	}
	doc.Timeline = "Not specified"
	doc.MarkField("timeline", domain.FieldDefault)
}

// cleanContact drops title/suffix noise after a comma in the contact name.
func cleanContact(doc *domain.ExtractedDocument) {
	if name := doc.Contact.Name; strings.Contains(name, ",") {
		doc.Contact.Name = strings.TrimSpace(name[:strings.Index(name, ",")])
		doc.MarkField("contact_name", domain.FieldInferred)
	}
}

func inferCategories(doc *domain.ExtractedDocument) {
	if len(doc.Categories) > 0 {
		return
	}
	categories := []string{"Defense", "IT"}
	hasCyber, hasAI := false, false
	for _, capability := range doc.RequiredCapabilities {
		c := strings.ToLower(capability)
		if strings.Contains(c, "cyber") {
			hasCyber = true
		}
		if strings.Contains(c, "ai") || strings.Contains(c, "machine learning") {
			hasAI = true
		}
	}
	if hasCyber {
		categories = append(categories, "Cybersecurity")
	}
	if hasAI {
		categories = append(categories, "AI/ML")
	}
	doc.Categories = categories
	doc.MarkField("categories", domain.FieldInferred)
}

func defaultExtractedDocument() *domain.ExtractedDocument {
	doc := &domain.ExtractedDocument{
		ProjectTitle:           "Extracted Document",
		SolicitationNumber:     placeholderSolicitationNumber(),
		Agency:                 "Unknown",
		Budget:                 domain.Budget{Currency: "USD"},
		SecurityClearance:      "Unknown",
		Timeline:               "Not specified",
		Description:            "Document uploaded for analysis",
		RequiredCapabilities:   []string{},
		RequiredCertifications: []string{},
		Categories:             []string{},
		Contact: domain.Contact{
			Name:  "Unknown",
			Email: "unknown@example.com",
			Phone: "Unknown",
		},
	}
	for _, field := range []string{
		"project_title", "solicitation_number", "agency", "budget",
		"security_clearance", "timeline", "description", "contact_name",
		"contact_email", "contact_phone", "required_capabilities",
		"required_certifications", "categories", "due_date", "currency",
	} {
		doc.MarkField(field, domain.FieldDefault)
	}
	return doc
}

func placeholderSolicitationNumber() string {
	return "RFP-" + strings.ToUpper(uuid.NewString()[:8])
}

func pickString(doc *domain.ExtractedDocument, field, value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		doc.MarkField(field, domain.FieldExtracted)
		return v
	}
	doc.MarkField(field, domain.FieldDefault)
	return fallback
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
