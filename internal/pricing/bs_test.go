package pricing

import (
	"errors"
	"math"
	"sync"
	"testing"
)

// Reference values from the textbook ATM example: S=K=100, T=1, r=5%, sigma=20%.
func TestBlackScholesPriceReference(t *testing.T) {
	cases := []struct {
		name     string
		optType  OptionType
		expected float64
	}{
		{"call", Call, 10.4506},
		{"put", Put, 5.5735},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := BlackScholesPrice(100, 100, 1, 0.05, 0.2, tc.optType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(price-tc.expected) > 0.01 {
				t.Fatalf("expected %.4f, got %.6f", tc.expected, price)
			}
		})
	}
}

func TestBlackScholesPutCallParity(t *testing.T) {
	inputs := []struct {
		S, K, T, r, sigma float64
	}{
		{100, 100, 1, 0.05, 0.2},
		{100, 100, 45.0 / 365.0, 0.03, 0.25},
		{581.39, 580, 16.0 / 365.0, 0.045, 0.14},
		{50, 80, 2, -0.01, 0.6},
		{120, 90, 0.25, 0.1, 0.05},
		{10, 10, 5, 0, 1.5},
	}

	for _, in := range inputs {
		call, err := BlackScholesPrice(in.S, in.K, in.T, in.r, in.sigma, Call)
		if err != nil {
			t.Fatalf("call: unexpected error: %v", err)
		}
		put, err := BlackScholesPrice(in.S, in.K, in.T, in.r, in.sigma, Put)
		if err != nil {
			t.Fatalf("put: unexpected error: %v", err)
		}

		lhs := call - put
		rhs := in.S - in.K*math.Exp(-in.r*in.T)
		if math.Abs(lhs-rhs) > 1e-9 {
			t.Fatalf("put-call parity violated for %+v: LHS=%.12f RHS=%.12f", in, lhs, rhs)
		}
	}
}

func TestBlackScholesZeroExpiryIsIntrinsic(t *testing.T) {
	for _, S := range []float64{50, 99.5, 100, 100.5, 150} {
		for _, r := range []float64{-0.02, 0, 0.05} {
			for _, sigma := range []float64{0, 0.2, 3} {
				call, err := BlackScholesPrice(S, 100, 0, r, sigma, Call)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if call != math.Max(0, S-100) {
					t.Fatalf("S=%v r=%v sigma=%v: expected %v, got %v", S, r, sigma, math.Max(0, S-100), call)
				}
			}
		}
	}

	// expired options are priced the same way
	put, err := BlackScholesPrice(90, 100, -0.5, 0.05, 0.2, Put)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if put != 10 {
		t.Fatalf("expected 10, got %v", put)
	}
}

func TestBlackScholesZeroVolatilityIsIntrinsic(t *testing.T) {
	for _, S := range []float64{50, 100, 150} {
		for _, T := range []float64{0, 0.5, 1, 10} {
			put, err := BlackScholesPrice(S, 100, T, 0.05, 0, Put)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if put != math.Max(0, 100-S) {
				t.Fatalf("S=%v T=%v: expected %v, got %v", S, T, math.Max(0, 100-S), put)
			}
		}
	}

	call, err := BlackScholesPrice(120, 100, 1, 0.05, -0.3, Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != 20 {
		t.Fatalf("negative volatility: expected 20, got %v", call)
	}
}

func TestBlackScholesNonNegative(t *testing.T) {
	for _, S := range []float64{1, 20, 80, 100, 120, 500} {
		for _, sigma := range []float64{0.01, 0.2, 1, 4} {
			for _, T := range []float64{1.0 / 365.0, 0.5, 3} {
				for _, optType := range []OptionType{Call, Put} {
					price, err := BlackScholesPrice(S, 100, T, 0.05, sigma, optType)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if price < -1e-9 {
						t.Fatalf("%s S=%v sigma=%v T=%v: negative price %v", optType, S, sigma, T, price)
					}
				}
			}
		}
	}
}

func TestBlackScholesCallMonotonicInSpot(t *testing.T) {
	prev := -1.0
	for S := 40.0; S <= 200.0; S += 0.5 {
		price, err := BlackScholesPrice(S, 100, 0.75, 0.03, 0.35, Call)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price < prev {
			t.Fatalf("call price decreased at S=%v: %v < %v", S, price, prev)
		}
		prev = price
	}
}

func TestBlackScholesInvalidType(t *testing.T) {
	price, err := BlackScholesPrice(100, 100, 1, 0.05, 0.2, OptionType("bogus"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if price != 0 {
		t.Fatalf("expected zero price on error, got %v", price)
	}

	// the degenerate branch must not bypass the check
	if _, err := BlackScholesPrice(100, 90, 0, 0.05, 0, OptionType("")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument on degenerate path, got %v", err)
	}
}

func TestBlackScholesATMVanishingVolatility(t *testing.T) {
	prevCall, prevPut := math.Inf(1), math.Inf(1)
	for _, sigma := range []float64{0.1, 0.01, 1e-3, 1e-4, 1e-6} {
		call, err := BlackScholesPrice(100, 100, 1, 0, sigma, Call)
		if err != nil {
			t.Fatalf("call: unexpected error: %v", err)
		}
		put, err := BlackScholesPrice(100, 100, 1, 0, sigma, Put)
		if err != nil {
			t.Fatalf("put: unexpected error: %v", err)
		}
		if call > prevCall || put > prevPut {
			t.Fatalf("sigma=%v: prices should shrink, call=%v put=%v", sigma, call, put)
		}
		prevCall, prevPut = call, put
	}
	if prevCall > 1e-3 || prevPut > 1e-3 {
		t.Fatalf("expected prices near 0, call=%v put=%v", prevCall, prevPut)
	}
}

func TestBlackScholesZeroStrikePropagates(t *testing.T) {
	// ln(S/0) = +Inf drives d1 and d2 to +Inf, leaving the call worth the spot
	price, err := BlackScholesPrice(100, 0, 1, 0.05, 0.2, Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 100 {
		t.Fatalf("expected 100, got %v", price)
	}
}

func TestBlackScholesConcurrent(t *testing.T) {
	want, err := BlackScholesPrice(100, 100, 1, 0.05, 0.2, Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan float64, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := BlackScholesPrice(100, 100, 1, 0.05, 0.2, Call)
			if got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Fatalf("expected %v from every goroutine, got %v", want, got)
	}
}

func TestNormCDF(t *testing.T) {
	cases := []struct {
		x, expected float64
	}{
		{0, 0.5},
		{1.959963984540054, 0.975},
		{-1.959963984540054, 0.025},
		{1, 0.8413447460685429},
		{-8, 6.22096057427178e-16},
	}
	for _, tc := range cases {
		if got := normCDF(tc.x); math.Abs(got-tc.expected) > 1e-12 {
			t.Fatalf("normCDF(%v): expected %v, got %v", tc.x, tc.expected, got)
		}
	}
}
