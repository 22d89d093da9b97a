// Package payment simulates a card payment provider.
//
// Card details are validated synchronously; settlement arrives later on the
// injected clock, like a real gateway's asynchronous confirmation.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/idgen"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/schedule"
	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the settlement latency of the simulator.
const DefaultDelay = 1500 * time.Millisecond

// DefaultCurrency is used when a request does not name one.
const DefaultCurrency = "USD"

// Decline reasons.
const (
	ReasonDeclined          = "card_declined"
	ReasonInsufficientFunds = "insufficient_funds"
)

// DefaultDeclines maps well-known test card numbers to their decline reason.
func DefaultDeclines() map[string]string {
	return map[string]string{
		"4000000000000002": ReasonDeclined,
		"4000000000009995": ReasonInsufficientFunds,
	}
}

// Simulator is a ports.PaymentGateway that never moves money.
type Simulator struct {
	clock    clockwork.Clock
	delay    time.Duration
	declines map[string]string
	ids      ports.IDGenerator
	logger   *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

func WithClock(c clockwork.Clock) Option {
	return func(s *Simulator) {
		s.clock = c
	}
}

// WithDelay sets the settlement latency.
func WithDelay(d time.Duration) Option {
	return func(s *Simulator) {
		s.delay = d
	}
}

// WithDeclines replaces the card numbers that settle as declined.
func WithDeclines(declines map[string]string) Option {
	return func(s *Simulator) {
		s.declines = declines
	}
}

// WithIDGenerator sets the source of charge references.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(s *Simulator) {
		s.ids = g
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// NewSimulator creates a simulator with a 1.5s settlement delay.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		clock:    clockwork.NewRealClock(),
		delay:    DefaultDelay,
		declines: DefaultDeclines(),
		ids:      idgen.UUIDv7{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit implements ports.PaymentGateway.
func (s *Simulator) Submit(ctx context.Context, req domain.ChargeRequest, done func(domain.ChargeResult)) (ports.Cancellable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	number, err := Validate(req, s.clock.Now())
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	result := domain.ChargeResult{
		Approved:    true,
		Reference:   "ch_" + s.ids.Generate(),
		AmountCents: req.AmountCents,
		Currency:    currency,
	}
	if reason, declined := s.declines[number]; declined {
		result.Approved = false
		result.Reason = reason
	}

	s.logger.Debug("charge submitted", "reference", result.Reference, "amount_cents", req.AmountCents, "last4", number[len(number)-4:])
	return schedule.After(s.clock, s.delay, func() {
		s.logger.Debug("charge settled", "reference", result.Reference, "approved", result.Approved)
		done(result)
	}), nil
}

// Validate checks card details and amount at the given time.
// It returns the card number stripped of spaces and dashes.
func Validate(req domain.ChargeRequest, now time.Time) (string, error) {
	if req.AmountCents <= 0 {
		return "", fmt.Errorf("%w: %d cents", domain.ErrInvalidAmount, req.AmountCents)
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(req.CardNumber)
	if len(number) < 12 || len(number) > 19 || !digits(number) {
		return "", fmt.Errorf("%w: malformed card number", domain.ErrInvalidCard)
	}
	if !Luhn(number) {
		return "", fmt.Errorf("%w: card number checksum", domain.ErrInvalidCard)
	}

	cvc := strings.TrimSpace(req.CVC)
	if (len(cvc) != 3 && len(cvc) != 4) || !digits(cvc) {
		return "", fmt.Errorf("%w: cvc", domain.ErrInvalidCard)
	}

	month, year, err := parseExpiry(req.Expiry)
	if err != nil {
		return "", err
	}
	// A card is valid through the last day of its expiry month.
	expires := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(expires) {
		return "", fmt.Errorf("%w: card expired %s", domain.ErrInvalidCard, req.Expiry)
	}
	return number, nil
}

func parseExpiry(raw string) (month, year int, err error) {
	mm, yy, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok || len(mm) != 2 || len(yy) != 2 {
		return 0, 0, fmt.Errorf("%w: expiry %q is not MM/YY", domain.ErrInvalidCard, raw)
	}
	month, err = strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: expiry month %q", domain.ErrInvalidCard, mm)
	}
	y, err := strconv.Atoi(yy)
	if err != nil || y < 0 {
		return 0, 0, fmt.Errorf("%w: expiry year %q", domain.ErrInvalidCard, yy)
	}
	return month, 2000 + y, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Luhn reports whether a digit string passes the mod-10 checksum.
func Luhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
