package domain

import "time"

// DeviceStatus tracks whether a device may authenticate.
type DeviceStatus string

const (
	DeviceActive    DeviceStatus = "active"
	DeviceBanned    DeviceStatus = "banned"
	DeviceSuspended DeviceStatus = "suspended"
)

// Device models a game client installation. Devices are scoped per-game: the
// client-chosen DeviceID is only unique within its GameID, so the same string
// under two games is two distinct devices. Created on first session request
// and never deleted by this service.
type Device struct {
	ID         string // server-side ULID, referenced by sessions and nonces
	GameID     string
	DeviceID   string // client-chosen opaque identifier
	Platform   string // optional, recorded on first sight (ios, android, ...)
	Status     DeviceStatus
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IsActive reports whether the device may authenticate.
func (d Device) IsActive() bool {
	return d.Status == DeviceActive
}

// DeviceIdentity is the result of validating an access token: everything
// downstream request handling needs to scope an operation to a device.
type DeviceIdentity struct {
	DeviceRef string // device record ULID
	DeviceID  string // client-chosen identifier
	GameID    string
	LineageID string
}
