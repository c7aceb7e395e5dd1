// Package sign produces detached armored PGP signatures for release
// artifacts, so flasher websites can verify a checksum manifest before
// trusting it.
package sign

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

var (
	// ErrNoPrivateKey means the keyring held no usable private key.
	ErrNoPrivateKey = errors.New("no private key in keyring")

	// ErrKeyEncrypted means the private key needs a passphrase, which
	// batch packaging cannot supply.
	ErrKeyEncrypted = errors.New("signing key is passphrase protected")
)

// Signer signs files with a single private key.
type Signer struct {
	entity *openpgp.Entity
}

// LoadKey reads a private key from path. Armored keyrings are tried
// first, then the binary format. The first entity carrying a private
// key is used.
func LoadKey(path string) (*Signer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open signing key: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
	}

	for _, entity := range keyring {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			return nil, fmt.Errorf("%w: %s", ErrKeyEncrypted, path)
		}
		return &Signer{entity: entity}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, path)
}

// Identity returns the name on the signing key's primary identity.
func (s *Signer) Identity() string {
	if id := s.entity.PrimaryIdentity(); id != nil {
		return id.Name
	}
	return ""
}

// SignFile writes a detached armored signature next to path and
// returns the signature file's path.
func (s *Signer) SignFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file to sign: %w", err)
	}
	defer in.Close()

	sigPath := path + ".asc"
	out, err := os.Create(sigPath)
	if err != nil {
		return "", fmt.Errorf("create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, in, nil); err != nil {
		out.Close()
		os.Remove(sigPath)
		return "", fmt.Errorf("sign %s: %w", filepath.Base(path), err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close signature file: %w", err)
	}
	return sigPath, nil
}
