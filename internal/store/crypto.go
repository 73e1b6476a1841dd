package store

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// urlCipher encrypts and decrypts webhook URLs with the process-wide
// Fernet key. URLs never touch the database in plaintext.
type urlCipher struct {
	key *fernet.Key
}

func newURLCipher(encodedKey string) (*urlCipher, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode token key: %w", err)
	}
	return &urlCipher{key: key}, nil
}

func (c *urlCipher) encrypt(url string) ([]byte, error) {
	tok, err := fernet.EncryptAndSign([]byte(url), c.key)
	if err != nil {
		return nil, fmt.Errorf("encrypt webhook url: %w", err)
	}
	return tok, nil
}

// decrypt verifies and decrypts a stored token. Tokens do not expire;
// a nil result means the token was forged or encrypted under another key.
func (c *urlCipher) decrypt(token []byte) (string, error) {
	plain := fernet.VerifyAndDecrypt(token, 0, []*fernet.Key{c.key})
	if plain == nil {
		return "", errors.New("webhook url token failed verification")
	}
	return string(plain), nil
}
