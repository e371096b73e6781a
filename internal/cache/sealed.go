package cache

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"tripsync/internal/domain"
)

// sealedVersion is written into every sealed value.
const sealedVersion = 1

// Default scrypt cost for new values. Stored values asking for more are
// refused.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	errWrongPassphrase = errors.New("wrong passphrase or corrupted cache entry")
	errKDFCost         = errors.New("key derivation cost exceeds limit")
)

// sealedValue is the stored form of an encrypted cache value.
type sealedValue struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	N       int    `json:"scrypt_N"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Box     []byte `json:"cipher"`
}

// Sealed encrypts values at rest before handing them to the wrapped backend.
// Each value gets its own salt for the scrypt-derived key, and the cache key
// is bound in as associated data.
type Sealed struct {
	inner      domain.CacheBackend
	passphrase []byte
	n, r, p    int
}

// NewSealed wraps inner with the default scrypt cost.
func NewSealed(inner domain.CacheBackend, passphrase string) *Sealed {
	return &Sealed{inner: inner, passphrase: []byte(passphrase), n: scryptN, r: scryptR, p: scryptP}
}

// Get opens the stored value for key.
func (s *Sealed) Get(key string) ([]byte, bool, error) {
	raw, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	var sv sealedValue
	if err := json.Unmarshal(raw, &sv); err != nil {
		return nil, false, fmt.Errorf("open %q: %w", key, err)
	}
	pt, err := s.open(key, sv)
	if err != nil {
		return nil, false, fmt.Errorf("open %q: %w", key, err)
	}
	return pt, true, nil
}

// Put seals value and stores it under key.
func (s *Sealed) Put(key string, value []byte) error {
	sv, err := s.seal(key, value)
	if err != nil {
		return fmt.Errorf("seal %q: %w", key, err)
	}
	raw, err := json.Marshal(sv)
	if err != nil {
		return fmt.Errorf("seal %q: %w", key, err)
	}
	return s.inner.Put(key, raw)
}

// Delete removes key from the wrapped backend.
func (s *Sealed) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *Sealed) seal(key string, plaintext []byte) (sealedValue, error) {
	sv := sealedValue{Version: sealedVersion, Salt: make([]byte, 16), N: s.n, R: s.r, P: s.p}
	if _, err := rand.Read(sv.Salt); err != nil {
		return sealedValue{}, err
	}
	aead, done, err := s.deriveAEAD(sv)
	if err != nil {
		return sealedValue{}, err
	}
	defer done()
	// A fresh salt gives a fresh key, so the zero nonce is never reused.
	var nonce [chacha20poly1305.NonceSize]byte
	sv.Box = aead.Seal(nil, nonce[:], plaintext, []byte(key))
	return sv, nil
}

func (s *Sealed) open(key string, sv sealedValue) ([]byte, error) {
	if sv.Version > sealedVersion {
		return nil, fmt.Errorf("unsupported sealed cache version %d", sv.Version)
	}
	if sv.N > s.n || sv.R > s.r || sv.P > s.p {
		return nil, fmt.Errorf("%w: N=%d r=%d p=%d", errKDFCost, sv.N, sv.R, sv.P)
	}
	aead, done, err := s.deriveAEAD(sv)
	if err != nil {
		return nil, err
	}
	defer done()
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], sv.Box, []byte(key))
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// deriveAEAD derives the AEAD for sv. done wipes the derived key.
func (s *Sealed) deriveAEAD(sv sealedValue) (aead cipher.AEAD, done func(), err error) {
	k, err := scrypt.Key(s.passphrase, sv.Salt, sv.N, sv.R, sv.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, nil, err
	}
	done = func() { subtle.ConstantTimeCopy(1, k, make([]byte, len(k))) }
	aead, err = chacha20poly1305.New(k)
	if err != nil {
		done()
		return nil, nil, err
	}
	return aead, done, nil
}

// Compile-time assertion that Sealed implements domain.CacheBackend.
var _ domain.CacheBackend = (*Sealed)(nil)
