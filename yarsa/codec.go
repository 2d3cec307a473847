package yarsa

import (
	"math/big"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

// EncryptUnit returns m^e mod n for a single plaintext byte.
// n > MaxUnit is guaranteed by key derivation, so the unit is always representable.
func EncryptUnit(pub *PublicKey, m byte) *big.Int {
	return ModExp(big.NewInt(int64(m)), pub.E, pub.N)
}

// EncryptInt returns m^e mod n for any m in [0, n).
func EncryptInt(pub *PublicKey, m *big.Int) (*big.Int, yaerrors.Error) {
	if err := checkUnit(m, pub.N); err != nil {
		return nil, err.Wrap("[RSA] refusing to encrypt")
	}

	return ModExp(m, pub.E, pub.N), nil
}

// DecryptUnit returns c^d mod n.
// A unit that is nil, negative or >= n violates the stream invariant and is rejected.
func DecryptUnit(key *KeyPair, c *big.Int) (*big.Int, yaerrors.Error) {
	if err := checkUnit(c, key.N); err != nil {
		return nil, err.Wrap("[RSA] refusing to decrypt")
	}

	return ModExp(c, key.D, key.N), nil
}

func checkUnit(v, n *big.Int) yaerrors.Error {
	if v == nil {
		return yaerrors.Invariant("cipher unit is nil")
	}

	if v.Sign() < 0 || v.Cmp(n) >= 0 {
		return yaerrors.Invariant("unit " + v.String() + " outside [0, " + n.String() + ")")
	}

	return nil
}
