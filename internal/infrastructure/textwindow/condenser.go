package textwindow

import "strings"

// Condenser bounds document text before it reaches a judge prompt by
// keeping a limited number of overlapping windows from the front of the
// document, where solicitations put their key fields.
type Condenser struct {
	WindowSize int
	Overlap    int
	MaxWindows int
}

func NewCondenser(windowSize, overlap, maxWindows int) *Condenser {
	if windowSize <= 0 {
		windowSize = 4000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= windowSize {
		overlap = windowSize / 4
	}
	if maxWindows <= 0 {
		maxWindows = 3
	}
	return &Condenser{
		WindowSize: windowSize,
		Overlap:    overlap,
		MaxWindows: maxWindows,
	}
}

func (c *Condenser) Condense(text string) string {
	runes := []rune(text)
	if len(runes) <= c.WindowSize {
		return strings.TrimSpace(text)
	}

	step := c.WindowSize - c.Overlap
	if step <= 0 {
		step = c.WindowSize
	}

	windows := make([]string, 0, c.MaxWindows)
	for start := 0; start < len(runes) && len(windows) < c.MaxWindows; start += step {
		end := start + c.WindowSize
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			windows = append(windows, window)
		}
		if end == len(runes) {
			break
		}
	}
	return strings.Join(windows, "\n\n")
}
