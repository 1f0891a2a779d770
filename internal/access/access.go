// Package access decides whether a paid life-project document may be
// generated for a payment.
//
// The payment provider itself is an external collaborator reached through
// Gate; this package only holds the rules applied to what it reports.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Offers sold by the service.
const (
	OfferStandard = "49"
	OfferAdvisor  = "79"
)

// StatusPaid is the only payment status that unlocks generation.
const StatusPaid = "paid"

var (
	ErrNotPaid        = errors.New("payment not completed")
	ErrInvalidOffer   = errors.New("invalid offer metadata")
	ErrMissingAdvisor = errors.New("missing advisor metadata")
)

// Payment is what the provider reports about a checkout.
type Payment struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Offer   string `json:"offer"`
	Advisor string `json:"advisor,omitempty"`
}

// Gate looks up a payment by id.
type Gate interface {
	Payment(ctx context.Context, id string) (*Payment, error)
}

// Decision is the outcome of Authorize.
type Decision struct {
	MayGenerate bool   `json:"may_generate"`
	Offer       string `json:"offer"`
	Advisor     string `json:"advisor,omitempty"`
}

// Authorize applies the offer rules to p. A paid payment must carry the
// 49 or 79 offer, and the 79 offer must name an advisor.
func Authorize(p *Payment) (Decision, error) {
	if p == nil {
		return Decision{}, ErrNotPaid
	}
	if p.Status != StatusPaid {
		return Decision{Offer: p.Offer, Advisor: p.Advisor}, fmt.Errorf("payment %s is %q: %w", p.ID, p.Status, ErrNotPaid)
	}
	if p.Offer != OfferStandard && p.Offer != OfferAdvisor {
		return Decision{Offer: p.Offer}, fmt.Errorf("offer %q: %w", p.Offer, ErrInvalidOffer)
	}
	if p.Offer == OfferAdvisor && strings.TrimSpace(p.Advisor) == "" {
		return Decision{Offer: p.Offer}, ErrMissingAdvisor
	}
	return Decision{MayGenerate: true, Offer: p.Offer, Advisor: p.Advisor}, nil
}

// Check fetches the payment from g and authorizes it.
func Check(ctx context.Context, g Gate, paymentID string) (Decision, error) {
	if strings.TrimSpace(paymentID) == "" {
		return Decision{}, fmt.Errorf("missing payment id: %w", ErrNotPaid)
	}
	p, err := g.Payment(ctx, paymentID)
	if err != nil {
		return Decision{}, fmt.Errorf("payment lookup: %w", err)
	}
	return Authorize(p)
}
