package crypto

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	if kp == nil {
		t.Fatal("GenerateKeyPair() returned nil")
	}

	der, err := kp.PublicKeyBytes()
	if err != nil {
		t.Fatalf("PublicKeyBytes() error = %v", err)
	}
	if len(der) == 0 {
		t.Error("PublicKeyBytes() returned empty bytes")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"short message", []byte("hello")},
		{"empty message", []byte("")},
		{"near max size", bytes.Repeat([]byte("x"), 200)},
	}

	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	der, err := kp.PublicKeyBytes()
	if err != nil {
		t.Fatalf("PublicKeyBytes() error = %v", err)
	}
	pub, err := ParsePublicKey(der)
	if err != nil {
		t.Fatalf("ParsePublicKey() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := Encrypt(tt.plaintext, pub)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			plaintext, err := kp.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plaintext, tt.plaintext) {
				t.Errorf("round trip = %q, want %q", plaintext, tt.plaintext)
			}
		})
	}
}

func TestMaxPlaintextSize(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	if kp.MaxPlaintextSize() != KeySize/8-11 {
		t.Errorf("MaxPlaintextSize() = %d, want %d", kp.MaxPlaintextSize(), KeySize/8-11)
	}
}

func TestSaveLoadKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "server.key")
	if err := kp.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadKeyPairFromFile(path)
	if err != nil {
		t.Fatalf("LoadKeyPairFromFile() error = %v", err)
	}

	der1, _ := kp.PublicKeyBytes()
	der2, _ := loaded.PublicKeyBytes()
	if !bytes.Equal(der1, der2) {
		t.Error("loaded key pair has different public key")
	}
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	if _, err := ParsePublicKey([]byte("not a key")); err == nil {
		t.Error("ParsePublicKey() with garbage input should fail")
	}
}
