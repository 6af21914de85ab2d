package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Challenge is a single-use login code emailed to a user. At most one
// challenge exists per email at any time; requesting a new one replaces it.
type Challenge struct {
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"` // UTC
	CreatedAt time.Time `db:"created_at"` // UTC
}

func (c Challenge) IsExpired() bool { return time.Now().UTC().After(c.ExpiresAt) }

// NewCode returns a uniformly random 6-digit code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, "generating code")
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
