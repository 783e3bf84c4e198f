// Package secure implements the pluggable key used by Encrypt and Sign
// schema fields: PKCS#1 v1.5 RSA encrypt/decrypt chunked to
// the key's modulus size, and PKCS#1 v1.5 sign/verify under a selectable
// hash.
//
// Grounded on original_source/src/secure.rs's SecureKey/Hasher pair, ported
// from the rsa/sha2/sha3 Rust crates to the stdlib crypto/rsa plus
// golang.org/x/crypto/sha3 (crypto/sha256 and crypto/sha512 cover the SHA2
// hashers already).
package secure

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/segmentio/encoding/json"
	"golang.org/x/crypto/sha3"
)

// Hasher selects the digest used to prepare data for PKCS#1 v1.5 signing.
type Hasher uint8

const (
	// HasherNone signs/verifies the raw bytes, unhashed.
	HasherNone Hasher = iota
	HasherSHA2_256
	HasherSHA2_512
	HasherSHA3_256
	HasherSHA3_512
)

// String names the hasher, used in schema JSON.
func (h Hasher) String() string {
	switch h {
	case HasherNone:
		return "None"
	case HasherSHA2_256:
		return "SHA2_256"
	case HasherSHA2_512:
		return "SHA2_512"
	case HasherSHA3_256:
		return "SHA3_256"
	case HasherSHA3_512:
		return "SHA3_512"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hasher) MarshalText() ([]byte, error) {
	switch h {
	case HasherNone, HasherSHA2_256, HasherSHA2_512, HasherSHA3_256, HasherSHA3_512:
		return []byte(h.String()), nil
	default:
		return nil, fmt.Errorf("secure: unknown hasher %d", h)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hasher) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "None":
		*h = HasherNone
	case "SHA2_256":
		*h = HasherSHA2_256
	case "SHA2_512":
		*h = HasherSHA2_512
	case "SHA3_256":
		*h = HasherSHA3_256
	case "SHA3_512":
		*h = HasherSHA3_512
	default:
		return fmt.Errorf("secure: unknown hasher %q", text)
	}
	return nil
}

// sum hashes data with h, returning the raw bytes unchanged when h is
// HasherNone.
func (h Hasher) sum(data []byte) []byte {
	switch h {
	case HasherSHA2_256:
		s := sha256.Sum256(data)
		return s[:]
	case HasherSHA2_512:
		s := sha512.Sum512(data)
		return s[:]
	case HasherSHA3_256:
		s := sha3.Sum256(data)
		return s[:]
	case HasherSHA3_512:
		s := sha3.Sum512(data)
		return s[:]
	default:
		return data
	}
}

// cryptoHash maps h onto a crypto.Hash for rsa.SignPKCS1v15/VerifyPKCS1v15,
// or crypto.Hash(0) for HasherNone (unhashed signing).
func (h Hasher) cryptoHash() crypto.Hash {
	switch h {
	case HasherSHA2_256:
		return crypto.SHA256
	case HasherSHA2_512:
		return crypto.SHA512
	case HasherSHA3_256:
		return crypto.SHA3_256
	case HasherSHA3_512:
		return crypto.SHA3_512
	default:
		return crypto.Hash(0)
	}
}

// Kind identifies a SecureKey variant.
type Kind uint8

const (
	// KindNone is the identity key: encrypt/decrypt pass data through
	// unchanged, sign returns no bytes, verify always succeeds.
	KindNone Kind = iota
	// KindRsaPkcs1Pem is a PEM-encoded PKCS#1 RSA key.
	KindRsaPkcs1Pem
)

// Key is the pluggable key used by Encrypt and Sign fields.
type Key struct {
	Kind      Kind
	IsPrivate bool
	KeyPEM    string
	Hasher    Hasher
}

// None returns the identity key.
func None() Key { return Key{Kind: KindNone} }

// RsaPkcs1Pem returns an RSA key parsed from PEM-encoded PKCS#1 text.
func RsaPkcs1Pem(isPrivate bool, keyPEM string, hasher Hasher) Key {
	return Key{Kind: KindRsaPkcs1Pem, IsPrivate: isPrivate, KeyPEM: keyPEM, Hasher: hasher}
}

type keyWire struct {
	Format    string `json:"format"`
	IsPrivate bool   `json:"is_private,omitempty"`
	Key       string `json:"key,omitempty"`
	Hasher    Hasher `json:"hasher,omitempty"`
}

// MarshalJSON renders Key as {"format":"None"} or
// {"format":"RsaPkcs1Pem","is_private":...,"key":...,"hasher":...}, per the
// SecureKey wire shape.
func (k Key) MarshalJSON() ([]byte, error) {
	switch k.Kind {
	case KindNone:
		return json.Marshal(keyWire{Format: "None"})
	case KindRsaPkcs1Pem:
		return json.Marshal(keyWire{Format: "RsaPkcs1Pem", IsPrivate: k.IsPrivate, Key: k.KeyPEM, Hasher: k.Hasher})
	default:
		return nil, fmt.Errorf("secure: unknown key kind %d", k.Kind)
	}
}

// UnmarshalJSON parses the SecureKey wire shape.
func (k *Key) UnmarshalJSON(data []byte) error {
	var w keyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Format {
	case "", "None":
		*k = None()
	case "RsaPkcs1Pem":
		*k = RsaPkcs1Pem(w.IsPrivate, w.Key, w.Hasher)
	default:
		return fmt.Errorf("secure: unknown key format %q", w.Format)
	}
	return nil
}

func (k Key) parsePublic() (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(k.KeyPEM))
	if block == nil {
		return nil, fmt.Errorf("secure: no PEM block found in public key")
	}
	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("secure: parse public key: %w", err)
	}
	return pub, nil
}

func (k Key) parsePrivate() (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(k.KeyPEM))
	if block == nil {
		return nil, fmt.Errorf("secure: no PEM block found in private key")
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("secure: parse private key: %w", err)
	}
	return priv, nil
}

// Encrypt encrypts data, chunked to the key's modulus size minus 11 bytes of
// PKCS#1 v1.5 padding overhead. Requires a public key.
func (k Key) Encrypt(data []byte) ([]byte, error) {
	switch k.Kind {
	case KindNone:
		return data, nil
	case KindRsaPkcs1Pem:
		if k.IsPrivate {
			return nil, fmt.Errorf("secure: encrypt requires a public key")
		}
		pub, err := k.parsePublic()
		if err != nil {
			return nil, err
		}
		chunkSize := pub.Size() - 11
		if chunkSize <= 0 {
			return nil, fmt.Errorf("secure: modulus too small for PKCS#1 v1.5 padding")
		}
		var out []byte
		for off := 0; off < len(data) || (len(data) == 0 && off == 0); off += chunkSize {
			end := off + chunkSize
			if end > len(data) {
				end = len(data)
			}
			enc, err := rsa.EncryptPKCS1v15(rand.Reader, pub, data[off:end])
			if err != nil {
				return nil, fmt.Errorf("secure: encrypt: %w", err)
			}
			out = append(out, enc...)
			if end == len(data) {
				break
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("secure: unsupported key kind")
	}
}

// Decrypt decrypts data, chunked to the key's modulus size. Requires a
// private key.
func (k Key) Decrypt(data []byte) ([]byte, error) {
	switch k.Kind {
	case KindNone:
		return data, nil
	case KindRsaPkcs1Pem:
		if !k.IsPrivate {
			return nil, fmt.Errorf("secure: decrypt requires a private key")
		}
		priv, err := k.parsePrivate()
		if err != nil {
			return nil, err
		}
		chunkSize := priv.Size()
		if len(data)%chunkSize != 0 {
			return nil, fmt.Errorf("secure: ciphertext length %d is not a multiple of modulus size %d", len(data), chunkSize)
		}
		var out []byte
		for off := 0; off < len(data); off += chunkSize {
			dec, err := rsa.DecryptPKCS1v15(rand.Reader, priv, data[off:off+chunkSize])
			if err != nil {
				return nil, fmt.Errorf("secure: decrypt: %w", err)
			}
			out = append(out, dec...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("secure: unsupported key kind")
	}
}

// Sign produces a PKCS#1 v1.5 signature over data, hashed per k.Hasher.
// Requires a private key. The None key returns no bytes.
func (k Key) Sign(data []byte) ([]byte, error) {
	switch k.Kind {
	case KindNone:
		return nil, nil
	case KindRsaPkcs1Pem:
		if !k.IsPrivate {
			return nil, fmt.Errorf("secure: sign requires a private key")
		}
		priv, err := k.parsePrivate()
		if err != nil {
			return nil, err
		}
		digest := k.Hasher.sum(data)
		sig, err := rsa.SignPKCS1v15(rand.Reader, priv, k.Hasher.cryptoHash(), digest)
		if err != nil {
			return nil, fmt.Errorf("secure: sign: %w", err)
		}
		return sig, nil
	default:
		return nil, fmt.Errorf("secure: unsupported key kind")
	}
}

// Verify reports whether sig is a valid PKCS#1 v1.5 signature over data.
// Requires a public key. The None key always verifies.
func (k Key) Verify(data, sig []byte) (bool, error) {
	switch k.Kind {
	case KindNone:
		return true, nil
	case KindRsaPkcs1Pem:
		if k.IsPrivate {
			return false, fmt.Errorf("secure: verify requires a public key")
		}
		pub, err := k.parsePublic()
		if err != nil {
			return false, err
		}
		digest := k.Hasher.sum(data)
		err = rsa.VerifyPKCS1v15(pub, k.Hasher.cryptoHash(), digest, sig)
		if err != nil {
			if err == rsa.ErrVerification {
				return false, nil
			}
			return false, fmt.Errorf("secure: verify: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("secure: unsupported key kind")
	}
}
