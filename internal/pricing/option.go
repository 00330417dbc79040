package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when an option type is neither call nor put.
var ErrInvalidArgument = errors.New("invalid argument")

// OptionType selects the payoff being priced.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType converts untyped text (CLI flags, query strings, config files)
// into an OptionType. Matching is case-insensitive and accepts the one-letter
// forms "c" and "p".
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", fmt.Errorf("%w: unsupported option type %q, must be either 'call' or 'put'", ErrInvalidArgument, s)
}

// Validate reports whether o is one of the two supported variants.
func (o OptionType) Validate() error {
	if o != Call && o != Put {
		return fmt.Errorf("%w: unsupported option type %q, must be either 'call' or 'put'", ErrInvalidArgument, string(o))
	}
	return nil
}

func (o OptionType) String() string {
	return string(o)
}

// OptionQuote holds the inputs of a single Black-Scholes evaluation. It has
// no wire form of its own; config.QuoteConfig and the report package define
// how quotes are read and written.
type OptionQuote struct {
	Spot         float64
	Strike       float64
	TimeToExpiry float64
	RiskFreeRate float64
	Volatility   float64
	Type         OptionType
}

// Price evaluates the quote with BlackScholesPrice.
func (q OptionQuote) Price() (float64, error) {
	return BlackScholesPrice(q.Spot, q.Strike, q.TimeToExpiry, q.RiskFreeRate, q.Volatility, q.Type)
}

// Intrinsic returns the exercise value of the quote ignoring time value.
func (q OptionQuote) Intrinsic() float64 {
	return intrinsic(q.Type, q.Spot, q.Strike)
}

// WithType returns a copy of q priced as optType.
func (q OptionQuote) WithType(optType OptionType) OptionQuote {
	q.Type = optType
	return q
}
