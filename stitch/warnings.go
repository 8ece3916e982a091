package stitch

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Warning type constants
const (
	WarningOutOfOrderTimestamp = "out_of_order_timestamp"
	WarningErrorPage           = "error_page"
	WarningErrorBatch          = "error_batch"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects non-fatal conditions during a run and
// outputs consolidated summaries
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example identifier
func (w *WarningAggregator) Add(warningType, exampleID string) {
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleID)
	}
}

// LogAll outputs all collected warnings in consolidated format
func (w *WarningAggregator) LogAll(source string) {
	if len(w.warnings) == 0 {
		return
	}

	for warningType, info := range w.warnings {
		log.Info(w.formatWarningMessage(warningType, source, info))
	}
}

// formatWarningMessage creates a human-readable warning message
func (w *WarningAggregator) formatWarningMessage(warningType, source string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningOutOfOrderTimestamp:
		description = "reports with non-increasing timestamps"
		action = "Records were kept in processing order"
	case WarningErrorPage:
		description = "HTML error pages"
		action = "Pages were discarded without output"
	case WarningErrorBatch:
		description = "responses with no usable records (Error element or empty)"
		action = "Responses yielded no output"
	default:
		description = "unknown issue"
		action = "Processing continued"
	}

	examplesStr := strings.Join(info.examples, ", ")

	return fmt.Sprintf("Archive %s has %s (%d occurrences). %s. Examples: %s",
		source, description, info.count, action, examplesStr)
}
