// Package password verifies user secrets against stored bcrypt hashes.
package password

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownScheme is returned by ParseScheme for strings that are not a
// bcrypt hash.  Plaintext values stored by older schemas land here.
var ErrUnknownScheme = errors.New("unknown password hash scheme")

// Scheme is the version information carried in a stored hash.
type Scheme struct {
	Algorithm string // "2a", "2b" or "2y"
	Cost      int
}

// ParseScheme reads the algorithm tag and cost from a stored hash.
func ParseScheme(stored string) (Scheme, error) {
	parts := strings.SplitN(stored, "$", 4)
	if len(parts) != 4 || parts[0] != "" {
		return Scheme{}, ErrUnknownScheme
	}
	switch parts[1] {
	case "2a", "2b", "2y":
	default:
		return Scheme{}, ErrUnknownScheme
	}
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return Scheme{}, errors.Wrap(ErrUnknownScheme, err.Error())
	}
	return Scheme{Algorithm: parts[1], Cost: cost}, nil
}

// Bcrypt verifies secrets against bcrypt hashes and produces new ones at
// Cost.
type Bcrypt struct {
	Cost int
}

// NewBcrypt clamps cost into the range bcrypt accepts.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{Cost: cost}
}

// Hash returns a salted bcrypt hash of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), b.Cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt hash")
	}
	return string(h), nil
}

// Verify reports whether secret matches stored.  The comparison is
// constant time; anything that is not a bcrypt hash never matches.
func (b *Bcrypt) Verify(secret, stored string) bool {
	if _, err := ParseScheme(stored); err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
}

// NeedsRehash reports whether stored was produced with a lower cost than
// the one currently configured.
func (b *Bcrypt) NeedsRehash(stored string) bool {
	s, err := ParseScheme(stored)
	if err != nil {
		return true
	}
	return s.Cost < b.Cost
}
