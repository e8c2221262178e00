package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// StubGateway simulates a card processor.  Card charges authorize
// immediately with a minted provider reference; cash charges stay
// pending until settled offline.  It stands in for a real gateway
// integration behind the same interface.
type StubGateway struct {
	Provider string // name recorded on payments, e.g. "stub"
}

// NewStubGateway returns a stub gateway reporting the given provider
// name.  An empty name defaults to "stub".
func NewStubGateway(provider string) *StubGateway {
	if provider == "" {
		provider = "stub"
	}
	return &StubGateway{Provider: provider}
}

// Authorize validates the request and mints a provider reference.
func (g *StubGateway) Authorize(_ context.Context, req AuthRequest) (Authorization, error) {
	if req.AmountCents == 0 {
		return Authorization{}, fmt.Errorf("%w: invalid amount %d", ErrDeclined, req.AmountCents)
	}
	switch req.Method {
	case "card":
		return Authorization{
			Provider:  g.Provider,
			Reference: "pi_" + uuid.New().String(),
			Status:    StatusAuthorized,
		}, nil
	case "cash":
		return Authorization{
			Provider:  g.Provider,
			Reference: "cash_" + uuid.New().String(),
			Status:    StatusPending,
		}, nil
	default:
		return Authorization{}, fmt.Errorf("%w: unsupported payment method %s", ErrDeclined, req.Method)
	}
}
