package usecase

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

var fencedBlockRE = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")

// RecoverJSONObject extracts the single JSON object embedded in free-form
// model output: fenced code blocks are unwrapped, surrounding prose is
// discarded, and the remaining slice must parse as strict JSON. It never
// supplies defaults; the caller owns fallback policy.
func RecoverJSONObject(raw string) ([]byte, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "recover json", errors.New("empty response"))
	}

	if m := fencedBlockRE.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "recover json", errors.New("no object boundaries"))
	}
	s = s[start : end+1]

	if !json.Valid([]byte(s)) {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "recover json", errors.New("candidate slice is not valid json"))
	}
	return []byte(s), nil
}
