package runner

import (
	"fmt"
	"strings"

	"github.com/YaCodeDev/GoYaRSABench/yabaseline"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
)

// Baseline names accepted in BASELINES and --baselines.
const (
	BaselineAES      = "aes"
	BaselineChaCha20 = "chacha20"
	BaselineRSAOAEP  = "rsa-oaep"
	BaselineTextbook = "textbook"
)

// Baselines lists every known baseline name.
var Baselines = []string{BaselineAES, BaselineChaCha20, BaselineRSAOAEP, BaselineTextbook}

// newBaseline builds the named cipher. With a seed the symmetric keys are
// HKDF-derived from it, salted with the baseline name, and the OAEP key is
// reproducible. The textbook adapter reuses key.
func newBaseline(name string, key *yarsa.KeyPair, seed string) (yabaseline.Cipher, yaerrors.Error) {
	var (
		c   yabaseline.Cipher
		err yaerrors.Error
	)

	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case BaselineAES:
		c, err = symmetric(seed, name, yabaseline.NewAESCBC, yabaseline.NewRandomAESCBC)
	case BaselineChaCha20:
		c, err = symmetric(seed, name, yabaseline.NewChaCha20, yabaseline.NewRandomChaCha20)
	case BaselineRSAOAEP:
		c, err = asCipher(yabaseline.NewRSAOAEP(yabaseline.DefaultRSABits, []byte(seed)))
	case BaselineTextbook:
		c, err = asCipher(yabaseline.NewTextbook(key))
	default:
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[Runner] unknown baseline %q, expected one of %s", name, strings.Join(Baselines, ", ")),
		)
	}

	if err != nil {
		return nil, err.Wrap("[Runner] failed to create baseline " + name)
	}

	return c, nil
}

func symmetric[C yabaseline.Cipher](
	seed string,
	name string,
	fromKey func([]byte) (C, yaerrors.Error),
	random func() (C, yaerrors.Error),
) (yabaseline.Cipher, yaerrors.Error) {
	if seed == "" {
		return asCipher(random())
	}

	secret, err := yabaseline.DeriveAESKey([]byte(seed), []byte(name))
	if err != nil {
		return nil, err
	}

	return asCipher(fromKey(secret))
}

// asCipher keeps a failed constructor from leaking a typed nil into the interface.
func asCipher[C yabaseline.Cipher](c C, err yaerrors.Error) (yabaseline.Cipher, yaerrors.Error) {
	if err != nil {
		return nil, err
	}

	return c, nil
}
