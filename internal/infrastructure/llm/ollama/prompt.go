package ollama

const maxExtractionSnippet = 12000

func buildExtractionPrompt(text string) string {
	snippet := text
	if len(snippet) > maxExtractionSnippet {
		snippet = snippet[:maxExtractionSnippet]
	}

	return `You are an RFP analyst. Extract the following information from the RFP text and return it as a single JSON object with exactly these keys:
project_title (string), budget (object with min, max, currency),
security_clearance_required (string), timeline (string),
contact (object with name, email, phone), due_date (string, YYYY-MM-DD),
agency (string), solicitation_number (string),
description (string, at most 200 characters),
required_capabilities (array of strings),
required_certifications (array of strings), categories (array of strings).
Return only the JSON object, no additional text, no markdown.

RFP TEXT:
` + snippet
}

func buildScoringPrompt(vendorProfile, rfpRequirements string) string {
	return `You are a sourcing specialist. Given a vendor profile and RFP requirements, evaluate the vendor's fit and return strict JSON with keys:
overall_score (number 0-100), rationale (string),
detailed_scores (object mapping factor names to numbers),
win_probability (number 0-100), risk_level (low|medium|high),
competition_level (low|medium|high), estimated_cost (string),
strengths (array of strings).
No markdown, no extra keys.

VENDOR PROFILE:
` + vendorProfile + `

RFP REQUIREMENTS:
` + rfpRequirements
}
