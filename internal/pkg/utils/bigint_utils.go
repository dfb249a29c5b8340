package utils

import (
	"math/big"
	"strings"
)

// FormatBigInt renders a base-unit amount as a decimal string scaled by
// decimals, with trailing fractional zeros removed.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}

	abs := new(big.Int).Abs(amount)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	var b strings.Builder
	if amount.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(whole.String())

	if frac.Sign() != 0 {
		fracStr := frac.String()
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(fracStr, "0"))
	}
	return b.String()
}

// ToFloat scales a base-unit amount down by decimals. Precision is lost for
// very large amounts; use it only for valuations.
func ToFloat(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor).Float64()
	return f
}
