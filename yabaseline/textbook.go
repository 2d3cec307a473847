package yabaseline

import (
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
	"github.com/YaCodeDev/GoYaRSABench/yastream"
)

// Textbook exposes the byte-wise textbook engine through Cipher. The sealed form
// is the yastream encoding of the cipher stream.
type Textbook struct {
	key   *yarsa.KeyPair
	codec *yastream.Codec
}

func NewTextbook(key *yarsa.KeyPair) (*Textbook, yaerrors.Error) {
	if err := key.Validate(); err != nil {
		return nil, err.Wrap("[TEXTBOOK] refusing invalid key pair")
	}

	return &Textbook{key: key, codec: yastream.NewCodec()}, nil
}

func (t *Textbook) Name() string {
	return "textbook-rsa"
}

func (t *Textbook) Encrypt(plain []byte) ([]byte, yaerrors.Error) {
	sealed, err := t.codec.Marshal(yarsa.Encrypt(&t.key.PublicKey, plain))
	if err != nil {
		return nil, err.Wrap("[TEXTBOOK] failed to encode cipher stream")
	}

	return sealed, nil
}

func (t *Textbook) Decrypt(sealed []byte) ([]byte, yaerrors.Error) {
	stream, err := t.codec.Unmarshal(sealed)
	if err != nil {
		return nil, err.Wrap("[TEXTBOOK] failed to decode cipher stream")
	}

	plain, err := yarsa.Decrypt(t.key, stream)
	if err != nil {
		return nil, err.Wrap("[TEXTBOOK] failed to decrypt")
	}

	return plain, nil
}
