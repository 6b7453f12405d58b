// Package idx generates the identifiers used by the models.
// Roles get ULIDs so they sort by creation time, tenants and members get UUIDs.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// ErrInvalid reports a malformed identifier.
var ErrInvalid = errors.New("idx: invalid identifier")

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a new monotonic ULID string.
func NewULID() string {
	return NewULIDAt(time.Now().UTC())
}

// NewULIDAt returns a new ULID string for the given time.
func NewULIDAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewUUID returns a new random UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// ParseULID validates s as a ULID.
func ParseULID(s string) (string, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return "", errors.Wrap(ErrInvalid, err.Error())
	}

	return u.String(), nil
}

// ParseUUID validates s as a UUID and returns its canonical form.
func ParseUUID(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", errors.Wrap(ErrInvalid, err.Error())
	}

	return u.String(), nil
}
