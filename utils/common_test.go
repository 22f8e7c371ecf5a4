package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicIdIsStable(t *testing.T) {
	a := DeterministicId("witness", "wit-1")
	b := DeterministicId("witness", "wit-1")
	c := DeterministicId("witness", "wit-2")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCalcDisplayAmount(t *testing.T) {
	assert.Equal(t, "1234.56789", CalcDisplayAmount(123456789))
	assert.Equal(t, "0.001", CalcDisplayAmount(100))
	assert.Equal(t, "0", CalcDisplayAmount(0))
}

func TestFormatRat(t *testing.T) {
	assert.Equal(t, "0.833333", FormatRat(big.NewRat(5, 6), 6))
	assert.Equal(t, "1", FormatRat(big.NewRat(1, 1), 6))
	assert.Equal(t, "0", FormatRat(new(big.Rat), 6))
}

func TestFormatUnixTime(t *testing.T) {
	assert.Equal(t, "", FormatUnixTime(0))
	assert.Equal(t, "2018-11-10 18:38:57", FormatUnixTime(1541875137))
}
