// Package validation provides sanity checks for gas readings before ranking.
package validation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Adrijan-Petek/gas-fee-optimizer/internal/model"
)

// ValidationOptions holds configuration for the validation process
type ValidationOptions struct {
	// MaxGasPriceGwei rejects readings above this price, 0 disables the cap
	MaxGasPriceGwei float64
}

// CheckGasPrice returns an error when a gas price cannot be ranked
func CheckGasPrice(gwei float64, opts ValidationOptions) error {
	if math.IsNaN(gwei) || math.IsInf(gwei, 0) {
		return fmt.Errorf("invalid gas price: %v", gwei)
	}
	if gwei < 0 {
		return fmt.Errorf("invalid gas price: negative value %v", gwei)
	}
	if opts.MaxGasPriceGwei > 0 && gwei > opts.MaxGasPriceGwei {
		return fmt.Errorf("invalid gas price: %v exceeds maximum %v", gwei, opts.MaxGasPriceGwei)
	}
	return nil
}

// Sanitize demotes an unusable successful reading to an error reading.
// An unusable priority fee is dropped, the same outcome as a failed estimate.
func Sanitize(chain string, r model.GasReading, opts ValidationOptions) model.GasReading {
	if !r.OK() {
		if r.Error == "" {
			return model.ErrorReading("no gas data returned")
		}
		return r
	}

	if err := CheckGasPrice(*r.GasPriceGwei, opts); err != nil {
		logrus.WithFields(logrus.Fields{
			"chain":          chain,
			"gas_price_gwei": *r.GasPriceGwei,
		}).Warn("Filtered invalid reading")
		return model.ErrorReading(err.Error())
	}

	if p := r.PriorityFeeGwei; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0) {
		logrus.WithField("chain", chain).Debugf("Dropped invalid priority fee %v", *p)
		return model.NewReading(*r.GasPriceGwei, nil)
	}

	return r
}
