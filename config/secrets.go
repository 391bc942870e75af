package config

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	derivedKeyLen   = 32
	keySalt         = "vms-portal/v1"
)

// Keys holds the keys derived from APP_SECRET.
type Keys struct {
	CSRF       []byte // gorilla/csrf authentication key
	FlashHash  []byte // flash cookie HMAC key
	FlashBlock []byte // flash cookie AES key
}

// DeriveKeys expands the application secret into independent per-purpose keys.
// When no secret is configured (development only) a random one is generated, so
// cookies signed by a previous process stop validating after a restart.
func (c *AppConfig) DeriveKeys() (Keys, error) {
	secret := []byte(c.Secret)
	if len(secret) == 0 {
		secret = make([]byte, minSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return Keys{}, fmt.Errorf("generate development secret: %w", err)
		}
	}

	var keys Keys
	targets := []struct {
		info string
		dst  *[]byte
	}{
		{info: "csrf", dst: &keys.CSRF},
		{info: "flash-hash", dst: &keys.FlashHash},
		{info: "flash-block", dst: &keys.FlashBlock},
	}
	for _, t := range targets {
		key, err := deriveKey(secret, t.info)
		if err != nil {
			return Keys{}, err
		}
		*t.dst = key
	}
	return keys, nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, []byte(keySalt), []byte(info))
	key := make([]byte, derivedKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
