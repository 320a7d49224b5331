// Package report assembles run reports and delivers them to disk and webhooks.
package report

import (
	"fmt"
	"time"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/aggregate"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/types"
)

// NoRecommendation is the recommendation text when no chain could be ranked
const NoRecommendation = "No recommendation could be made due to insufficient data."

// FormatTimestamp renders a run timestamp as ISO-8601 UTC with second precision
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

// Recommendation returns the human readable advice for a ranking result
func Recommendation(result aggregate.Result) string {
	if result.Best == nil {
		return NoRecommendation
	}
	return fmt.Sprintf("Use %s now for the lowest fees.", result.Best.DisplayName)
}

// Build assembles a report. Every chain in chains gets an entry; a chain
// without a reading is recorded as an error.
func Build(ts time.Time, chains []types.ChainConfig, readings map[string]model.GasReading, result aggregate.Result) model.Report {
	entries := make(map[string]model.GasReading, len(chains))
	for _, c := range chains {
		r, ok := readings[string(c.ID)]
		if !ok {
			r = model.ErrorReading("no reading recorded for this chain")
		}
		entries[string(c.ID)] = r
	}

	var best *string
	if id, ok := result.BestChainID(); ok {
		best = &id
	}

	return model.Report{
		Timestamp:      FormatTimestamp(ts),
		BestChain:      best,
		Recommendation: Recommendation(result),
		Chains:         entries,
	}
}
