package usecase

import (
	"strings"

	"github.com/kirillkom/rfp-matcher/internal/core/domain"
)

// FallbackScore is the deterministic, judge-independent compatibility
// estimate: base 50, plus clearance, capability-overlap, and past-performance
// bonuses, clamped to [0,100]. Identical inputs always yield the same value.
func FallbackScore(vendor domain.Vendor, rfp domain.RFP) int {
	score := 50

	vendorClearance := strings.ToLower(vendor.ClearanceLevel)
	requiredClearance := strings.ToLower(rfp.SecurityClearance)
	switch {
	case strings.Contains(vendorClearance, "top secret") && strings.Contains(requiredClearance, "top secret"):
		score += 20
	case strings.Contains(vendorClearance, "secret") && strings.Contains(requiredClearance, "secret"):
		score += 15
	case requiredClearance == "none" || requiredClearance == "unknown":
		score += 10
	}

	overlap := 0
	for _, capability := range vendor.Capabilities {
		c := strings.ToLower(capability)
		for _, required := range rfp.RequiredCapabilities {
			r := strings.ToLower(required)
			if strings.Contains(r, c) || strings.Contains(c, r) {
				overlap++
				break
			}
		}
	}
	score += min(20, overlap*5)

	score += min(10, vendor.PastPerformanceScore/10)

	return max(0, min(100, score))
}
