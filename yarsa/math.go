package yarsa

import (
	"math/big"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// GCD returns the greatest common divisor of |a| and |b| by Euclid's algorithm.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)

	for y.Sign() != 0 {
		x.Mod(x, y)
		x, y = y, x
	}

	return x
}

// ModInverse returns d in [0, m) with a*d ≡ 1 (mod m), computed with the
// extended Euclidean algorithm. A negative Bézout coefficient is brought into
// range by adding m once.
//
// It fails with yaerrors.ErrInvariantViolation when m <= 1 or gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, yaerrors.Error) {
	if m.Cmp(bigOne) <= 0 {
		return nil, yaerrors.Invariant("[RSA] modulus of an inverse must exceed one")
	}

	oldR := new(big.Int).Mod(a, m)
	r := new(big.Int).Set(m)
	oldS := big.NewInt(1)
	s := big.NewInt(0)

	q := new(big.Int)
	tmp := new(big.Int)

	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, oldR.Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, oldS.Sub(oldS, tmp)
	}

	if oldR.Cmp(bigOne) != 0 {
		return nil, yaerrors.Invariant("[RSA] value has no inverse: gcd is " + oldR.String())
	}

	if oldS.Sign() < 0 {
		oldS.Add(oldS, m)
	}

	return oldS, nil
}

// ModExp returns base^exp mod mod using right-to-left square-and-multiply,
// so the cost is logarithmic in exp. exp must be non-negative and mod positive.
func ModExp(base, exp, mod *big.Int) *big.Int {
	result := big.NewInt(1)
	if mod.Cmp(bigOne) == 0 {
		return result.SetInt64(0)
	}

	square := new(big.Int).Mod(base, mod)

	for i := range exp.BitLen() {
		if exp.Bit(i) == 1 {
			result.Mul(result, square)
			result.Mod(result, mod)
		}

		square.Mul(square, square)
		square.Mod(square, mod)
	}

	return result
}
