package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGasReading_Score(t *testing.T) {
	assert.Equal(t, 7.0, NewReading(7, nil).Score())
	assert.Equal(t, 10.0, NewReading(9, Float(1)).Score())
	assert.True(t, math.IsInf(ErrorReading("x").Score(), 1))
	assert.False(t, GasReading{}.OK())
}

func TestGasReading_JSON(t *testing.T) {
	data, err := json.Marshal(ErrorReading("missing configuration for this chain"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"gas_price_gwei":null,"priority_fee_gwei":null,"error":"missing configuration for this chain"}`, string(data))

	data, err = json.Marshal(NewReading(6, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"gas_price_gwei":6,"priority_fee_gwei":null}`, string(data))
}
