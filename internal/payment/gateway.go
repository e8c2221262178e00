// Package payment defines the external payment gateway boundary.  The
// booking manager never persists a payment it did not run through a
// Gateway first; the gateway's outcome decides the stored status.
package payment

import (
	"context"
	"errors"
)

// ErrDeclined marks an authorization the provider rejected: bad amount,
// unsupported method, declined card.  Gateways wrap it so callers can
// tell a declined charge from a transport failure.
var ErrDeclined = errors.New("authorization declined")

// Authorization statuses a gateway may return.
const (
	StatusAuthorized = "authorized"
	StatusPending    = "pending"
)

// AuthRequest describes a charge to authorize.
type AuthRequest struct {
	ReservationID uint64
	UserID        uint64
	AmountCents   uint32
	Currency      string
	Method        string // "card" or "cash"
}

// Authorization is the gateway's answer for a charge.  Reference is the
// provider-side identifier persisted as payments.provider_ref.
type Authorization struct {
	Provider  string
	Reference string
	Status    string
}

// Gateway authorizes charges with an external payment provider.
type Gateway interface {
	Authorize(ctx context.Context, req AuthRequest) (Authorization, error)
}
