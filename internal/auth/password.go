package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 10

	// MaxPasswordBytes is bcrypt's key limit. Hashing rejects longer input,
	// but comparing would silently use only the first 72 bytes.
	MaxPasswordBytes = 72
)

// Hasher hashes and checks passwords with bcrypt. The cost is embedded in
// every hash, so changing it never invalidates stored credentials.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher clamps cost into bcrypt's accepted range; zero means DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("expensely-timing-equalizer"), cost)
	if err != nil {
		// Only reachable with an out-of-range cost, which is clamped above.
		panic(err)
	}
	return &Hasher{cost: cost, dummy: dummy}
}

func (h *Hasher) Cost() int { return h.cost }

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Verify never accepts a password longer than MaxPasswordBytes, since no
// such password can have produced a stored hash.
func (h *Hasher) Verify(password, hash string) bool {
	if len(password) > MaxPasswordBytes {
		h.Equalize(password[:MaxPasswordBytes])
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Equalize spends the same time as a failed Verify. Login calls it when the
// email is unknown so response timing does not reveal which users exist.
func (h *Hasher) Equalize(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
