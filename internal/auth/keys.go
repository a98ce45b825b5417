// AngelaMos | 2026
// keys.go

package auth

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

const keyIDLength = 16

// signingKey is the ES256 pair a JWTManager signs and verifies with.
type signingKey struct {
	private jwk.Key
	public  jwk.Key
	id      string
}

// loadSigningKey reads the private key and tags both halves with a key id
// taken from the RFC 7638 thumbprint, so the id survives restarts and is
// shared by every replica holding the same key.
func loadSigningKey(privatePath, publicPath string) (*signingKey, error) {
	priv, err := readPEMKey(privatePath)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}

	thumb, err := priv.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("key thumbprint: %w", err)
	}
	if err := checkPublicKey(publicPath, thumb); err != nil {
		return nil, err
	}

	id := base64.RawURLEncoding.EncodeToString(thumb)[:keyIDLength]
	for k, v := range map[string]any{jwk.AlgorithmKey: jwa.ES256(), jwk.KeyIDKey: id} {
		if err := priv.Set(k, v); err != nil {
			return nil, fmt.Errorf("tag private key %s: %w", k, err)
		}
	}

	pub, err := priv.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := pub.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("tag public key: %w", err)
	}

	return &signingKey{private: priv, public: pub, id: id}, nil
}

func readPEMKey(path string) (jwk.Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	key, err := jwk.ParseKey(data, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return key, nil
}

// checkPublicKey passes when the public key file is absent. A present file
// must hold the public half of the key whose thumbprint is want.
func checkPublicKey(path string, want []byte) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	key, err := readPEMKey(path)
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	got, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return fmt.Errorf("public key thumbprint: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("public key %s does not match the private key", path)
	}
	return nil
}

// GenerateKeyPair writes a fresh P-256 pair as PEM. It refuses to replace an
// existing private key.
func GenerateKeyPair(privatePath, publicPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	priv, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}
	pub, err := priv.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := writePEM(privatePath, priv, 0o600, true); err != nil {
		return err
	}
	//nolint:gosec // G306: public key is meant to be readable
	return writePEM(publicPath, pub, 0o644, false)
}

func writePEM(path string, key jwk.Key, mode os.FileMode, exclusive bool) error {
	data, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck // write already failed
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
