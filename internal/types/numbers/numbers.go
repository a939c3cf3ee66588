// Package numbers provides checked integer arithmetic for the points and
// token domains. All counters in the engine are uint64; any operation that
// would wrap aborts with an error instead of silently truncating.
package numbers

import (
	"fmt"
	"math/big"
)

// CheckedAddU64 returns a+b or an error if the sum overflows uint64.
func CheckedAddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("uint64 overflow adding %d and %d", a, b)
	}
	return sum, nil
}

// CheckedMulU64 returns a*b or an error if the product overflows uint64.
func CheckedMulU64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, fmt.Errorf("uint64 overflow multiplying %d and %d", a, b)
	}
	return product, nil
}

// MulDivFloorU64 computes floor(a * b / d) using a widened big.Int
// intermediate so the multiplication cannot overflow before the division.
func MulDivFloorU64(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, fmt.Errorf("division by zero in %d * %d / 0", a, b)
	}
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(a),
		new(big.Int).SetUint64(b),
	)
	quotient := product.Div(product, new(big.Int).SetUint64(d))
	if !quotient.IsUint64() {
		return 0, fmt.Errorf("uint64 overflow in %d * %d / %d", a, b, d)
	}
	return quotient.Uint64(), nil
}
