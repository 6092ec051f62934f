// Package crypto seals session entries before they reach the key-value
// store. Sealed values are base64 text. The envelope makes stored entries
// tamper-evident; authorization still happens server-side.
package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/formlane/console/internal/core/domain"
	"github.com/formlane/console/internal/core/ports"
)

const (
	KindAge       = "age"
	KindSecretbox = "secretbox"

	keyContext = "formlane console 2026 session envelope"
	nonceSize  = 24
)

// NewEnvelope builds the envelope named by kind. An empty key yields a
// process-local key, so sessions do not survive a restart.
func NewEnvelope(kind, key string, log zerolog.Logger) (ports.Envelope, error) {
	if key == "" {
		log.Warn().Str("envelope", kind).Msg("ENVELOPE_KEY not set, using an ephemeral key")
	}
	switch kind {
	case KindAge, "":
		return NewAgeEnvelope(key)
	case KindSecretbox:
		return NewSecretboxEnvelope(key)
	default:
		return nil, fmt.Errorf("unknown envelope %q", kind)
	}
}

// AgeEnvelope encrypts to the recipient of a single X25519 identity.
type AgeEnvelope struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// NewAgeEnvelope parses an AGE-SECRET-KEY-1... identity, or generates one
// when identity is empty.
func NewAgeEnvelope(identity string) (*AgeEnvelope, error) {
	var (
		id  *age.X25519Identity
		err error
	)
	if identity == "" {
		id, err = age.GenerateX25519Identity()
	} else {
		id, err = age.ParseX25519Identity(identity)
	}
	if err != nil {
		return nil, fmt.Errorf("age identity: %w", err)
	}
	return &AgeEnvelope{identity: id, recipient: id.Recipient()}, nil
}

func (e *AgeEnvelope) Seal(plaintext []byte) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (e *AgeEnvelope) Open(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding base64: %w", domain.ErrDecryption, err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), e.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecryption, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading plaintext: %w", domain.ErrDecryption, err)
	}
	return plaintext, nil
}

// SecretboxEnvelope is XSalsa20-Poly1305 under a key derived with BLAKE3
// from operator-supplied material. Output is nonce || box.
type SecretboxEnvelope struct {
	key [32]byte
}

func NewSecretboxEnvelope(material string) (*SecretboxEnvelope, error) {
	e := &SecretboxEnvelope{}
	if material == "" {
		if _, err := io.ReadFull(rand.Reader, e.key[:]); err != nil {
			return nil, fmt.Errorf("generating key: %w", err)
		}
		return e, nil
	}
	blake3.DeriveKey(keyContext, []byte(material), e.key[:])
	return e, nil
}

func (e *SecretboxEnvelope) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], plaintext, &nonce, &e.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (e *SecretboxEnvelope) Open(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding base64: %w", domain.ErrDecryption, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrDecryption)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &e.key)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", domain.ErrDecryption)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
