// Package passwords turns raw passwords into stored credential strings and
// checks candidates against them.
//
// Three schemes are available: bcrypt (default), argon2id and plain. The
// plain scheme keeps the password as given and exists only for stores
// created before hashing was introduced.
package passwords

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
	SchemePlain    = "plain"
)

// ErrUnknownScheme is returned by New for an unsupported scheme name.
var ErrUnknownScheme = errors.New("unknown password scheme")

// Hasher encodes passwords for storage and verifies candidates.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) bool
}

// New returns the Hasher for scheme.
func New(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case SchemeArgon2id:
		return Argon2Hasher{}, nil
	case SchemePlain:
		return PlainHasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// Schemes lists the accepted scheme names.
func Schemes() []string {
	return []string{SchemeBcrypt, SchemeArgon2id, SchemePlain}
}

// BcryptMaxPasswordLen is the longest password bcrypt accepts, in bytes.
const BcryptMaxPasswordLen = 72

type BcryptHasher struct {
	Cost int
}

// Hash rejects passwords over BcryptMaxPasswordLen bytes with
// common.ErrorMalformedInput.
func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password must be at most %d bytes", common.ErrorMalformedInput, BcryptMaxPasswordLen)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(encoded, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

// argon2id parameters, shared with the key derivation the project used for
// master keys.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
	argonPrefix  = "$argon2id$"
)

// Argon2Hasher stores "$argon2id$<salt-hex>$<key-hex>".
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(argonSaltLen)
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return argonPrefix + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

func (Argon2Hasher) Verify(encoded, password string) bool {
	rest, ok := strings.CutPrefix(encoded, argonPrefix)
	if !ok {
		return false
	}
	saltHex, keyHex, ok := strings.Cut(rest, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, uint32(len(want)))
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}

// PlainHasher stores passwords verbatim. Insecure.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Verify(encoded, password string) bool {
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(password)) == 1
}
