// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package secrets provides the encrypt-on-write / decrypt-on-read
// boundary for merchant access tokens, plus resolution of the encryption
// key from the environment or the OS keyring.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Cipher seals and opens access tokens with AES-256-GCM. It is explicit
// and storage-independent: callers decide where sealed values live.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher from a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ssgerr.Errorf(ssgerr.CodeSecretsKeyInvalid, "encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyInvalid, "creating AES cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsKeyInvalid, "creating GCM")
	}

	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns a base64 string of nonce||ciphertext.
// The empty string passes through unchanged so an unset token stays unset.
func (c *Cipher) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", ssgerr.Wrap(err, ssgerr.CodeSecretsSealFailure, "generating nonce")
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (c *Cipher) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ssgerr.Wrap(err, ssgerr.CodeSecretsOpenFailure, "decoding sealed token")
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ssgerr.New(ssgerr.CodeSecretsOpenFailure, "sealed token too short")
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ssgerr.Wrap(err, ssgerr.CodeSecretsOpenFailure, "opening sealed token")
	}
	return string(plaintext), nil
}
