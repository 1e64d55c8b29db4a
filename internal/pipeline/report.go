package pipeline

import (
	"fmt"
	"strings"
)

// ruleWidth is the width of the "=" rules framing the summary.
const ruleWidth = 50

// Report renders the end-of-run summary.
type Report struct {
	Stats         RunStats
	RepairEnabled bool
}

// Lines returns the summary block, one log line per element. The repaired
// count is only shown when repair was enabled.
func (r Report) Lines() []string {
	rule := strings.Repeat("=", ruleWidth)
	lines := []string{
		rule,
		"Process Summary:",
		fmt.Sprintf("  Total video files processed: %d", r.Stats.Total),
		fmt.Sprintf("  Thumbnails successfully created: %d", r.Stats.Processed),
		fmt.Sprintf("  Files skipped (already exist): %d", r.Stats.Skipped),
		fmt.Sprintf("  Errors encountered: %d", r.Stats.Errors),
	}
	if r.RepairEnabled {
		lines = append(lines, fmt.Sprintf("  Files successfully repaired: %d", r.Stats.Repaired))
	}
	return append(lines, rule)
}

// Log writes the summary through log at INFO level.
func (r Report) Log(log Logger) {
	for _, l := range r.Lines() {
		log.Info("%s", l)
	}
}
