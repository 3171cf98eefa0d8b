package httpx

import "context"

type ctxKey string

const (
	CtxKeyDeviceRef ctxKey = "device_ref"
	CtxKeyDeviceID  ctxKey = "device_id"
	CtxKeyGameID    ctxKey = "game_id"
	CtxKeyLineageID ctxKey = "lineage_id"
	CtxKeyClaims    ctxKey = "claims" // full jwtx.Claims if a handler needs them
)

// DeviceRefFromCtx returns the authenticated device record id, or "" when the
// request did not pass through AuthnMiddleware.
func DeviceRefFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyDeviceRef).(string); ok {
		return v
	}
	return ""
}

// DeviceIDFromCtx returns the client-supplied device identifier.
func DeviceIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyDeviceID).(string); ok {
		return v
	}
	return ""
}

// GameIDFromCtx returns the authenticated game id.
func GameIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyGameID).(string); ok {
		return v
	}
	return ""
}
