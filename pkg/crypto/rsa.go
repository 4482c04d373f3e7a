package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// KeySize is the RSA modulus size smoldb uses for both server and client
// key pairs, per the spec's fixed 2048-bit parameter.
const KeySize = 2048

// ErrKeyGeneration is returned when the entropy source is unavailable
// during key pair generation.
var ErrKeyGeneration = errors.New("key generation failed")

// KeyPair holds one RSA key pair and the encrypt/decrypt operations smoldb
// needs from it. A server keeps exactly one KeyPair for its process
// lifetime; a client generates its own per connection.
type KeyPair struct {
	private *rsa.PrivateKey
}

// GenerateKeyPair creates a fresh RSA-2048 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return &KeyPair{private: priv}, nil
}

// PublicKeyBytes returns the PKIX DER encoding of the pair's public half,
// suitable for sending over the wire as the SetupEncryption/PubKey payload.
func (k *KeyPair) PublicKeyBytes() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.private.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return der, nil
}

// Decrypt recovers the plaintext of a single RSA block encrypted with this
// pair's public key.
func (k *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, k.private, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// ParsePublicKey decodes a PKIX DER-encoded RSA public key as received over
// the wire during key exchange.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("parse public key: not an RSA key")
	}
	return rsaPub, nil
}

// Encrypt encrypts a single RSA block with the given public key. Used both
// by the server (encrypting replies with the client's key) and by the
// client (encrypting requests with the server's key).
func Encrypt(plaintext []byte, pub *rsa.PublicKey) ([]byte, error) {
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return ciphertext, nil
}

// MaxPlaintextSize returns the largest plaintext that fits in one RSA block
// for this pair's key size, per PKCS#1 v1.5's 11-byte minimum padding
// overhead.
func (k *KeyPair) MaxPlaintextSize() int {
	return k.private.Size() - 11
}

// SaveToFile persists the private key as PEM-encoded PKCS#8, so a server can
// opt into a stable key across restarts (spec §9, Server key lifecycle).
// The default behavior is to regenerate per process start; this is only
// used when --persist-keys is set.
func (k *KeyPair) SaveToFile(path string) error {
	der, err := x509.MarshalPKCS8PrivateKey(k.private)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// LoadKeyPairFromFile loads a PEM-encoded PKCS#8 RSA private key previously
// written by SaveToFile.
func LoadKeyPairFromFile(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("key file is not valid PEM")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("key file does not hold an RSA key")
	}
	return &KeyPair{private: rsaKey}, nil
}
