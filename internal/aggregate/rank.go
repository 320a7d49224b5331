// Package aggregate ranks chains by their total estimated fee.
package aggregate

import (
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/types"
)

// Result is the outcome of ranking one set of readings
type Result struct {
	// Best is nil when no chain produced a successful reading
	Best *types.ChainConfig

	// Score is the total fee of Best in gwei
	Score float64
}

// BestChainID returns the id of the cheapest chain, if any
func (r Result) BestChainID() (string, bool) {
	if r.Best == nil {
		return "", false
	}
	return string(r.Best.ID), true
}

// Rank selects the chain with the lowest gas price plus priority fee.
// Chains are visited in the given order and ties keep the earlier chain.
// Error readings and chains without a reading are skipped.
func Rank(chains []types.ChainConfig, readings map[string]model.GasReading) Result {
	var result Result
	for i := range chains {
		r, ok := readings[string(chains[i].ID)]
		if !ok || !r.OK() {
			continue
		}
		score := r.Score()
		if result.Best == nil || score < result.Score {
			chain := chains[i]
			result.Best = &chain
			result.Score = score
		}
	}
	return result
}
