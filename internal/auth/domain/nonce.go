package domain

import "time"

// NonceStatus is the stored lifecycle state of a nonce.
type NonceStatus string

const (
	NoncePending NonceStatus = "pending"
	NonceUsed    NonceStatus = "used"
	NonceExpired NonceStatus = "expired"
)

// Nonce is a single-use, short-lived ticket required on mutating requests to
// prevent replay. A nonce transitions PENDING to USED at most once. EXPIRED
// is primarily a read-time judgement: a PENDING row past its expires_at must
// be rejected even before housekeeping stamps it. Rows are kept forever for
// audit.
type Nonce struct {
	Value     string // UUID, the primary key
	DeviceRef string // owning device record ULID
	Status    NonceStatus
	UsedAt    *time.Time
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the nonce is past its expiry at the given time.
func (n Nonce) IsExpired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
