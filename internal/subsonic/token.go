package subsonic

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MinSaltLength is the minimum salt length accepted for token generation,
// per the Subsonic API recommendation.
const MinSaltLength = 6

// Token derives the API token for a password and salt: hex(md5(password+salt)).
// The token is only valid together with the exact salt it was derived from.
func Token(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// NewSalt returns a random salt suitable for token generation.
func NewSalt() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ValidateSalt checks that a user-supplied salt is long enough.
func ValidateSalt(salt string) error {
	if len(salt) < MinSaltLength {
		return fmt.Errorf("salt must be at least %d characters", MinSaltLength)
	}
	return nil
}
