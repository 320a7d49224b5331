// Package model defines the core data structures for the gas fee optimizer.
package model

import (
	"math"
)

// WeiPerGwei converts the smallest native fee unit to gwei.
const WeiPerGwei = 1e9

// GasReading is the outcome of one fetch attempt for one chain.
// Either GasPriceGwei is set or Error is, never both.
type GasReading struct {
	// GasPriceGwei is the current gas price reported by eth_gasPrice
	GasPriceGwei *float64 `json:"gas_price_gwei"`

	// PriorityFeeGwei is the mean recent priority fee; nil when it could not be estimated
	PriorityFeeGwei *float64 `json:"priority_fee_gwei"`

	// Error describes why no reading is available for this chain
	Error string `json:"error,omitempty"`
}

// NewReading creates a successful reading. priorityFee may be nil.
func NewReading(gasPrice float64, priorityFee *float64) GasReading {
	return GasReading{
		GasPriceGwei:    &gasPrice,
		PriorityFeeGwei: priorityFee,
	}
}

// ErrorReading creates a reading that only carries an error message.
func ErrorReading(msg string) GasReading {
	return GasReading{Error: msg}
}

// OK reports whether the reading carries usable gas data
func (r GasReading) OK() bool {
	return r.Error == "" && r.GasPriceGwei != nil
}

// Score is the total estimated fee used for ranking
func (r GasReading) Score() float64 {
	if !r.OK() {
		return math.Inf(1)
	}
	score := *r.GasPriceGwei
	if r.PriorityFeeGwei != nil {
		score += *r.PriorityFeeGwei
	}
	return score
}

// Report is the artifact produced by a single run.
type Report struct {
	// Timestamp is the ISO-8601 time captured at the start of the run
	Timestamp string `json:"timestamp"`

	// BestChain is the id of the cheapest chain, nil when none qualified
	BestChain *string `json:"best_chain"`

	Recommendation string `json:"recommendation"`

	// Chains holds one entry per configured chain, successful or not
	Chains map[string]GasReading `json:"chains"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
