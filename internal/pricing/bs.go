package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//   - optType: Call or Put
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility is zero or negative,
//	returns the intrinsic value of the option. An option type other than Call or Put
//	yields an error wrapping ErrInvalidArgument and a zero price.
//
// Spot and strike are not validated; non-positive values flow through the formula
// and whatever math.Log produces (Inf, NaN) is returned as is.
func BlackScholesPrice(
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
	optType OptionType,
) (float64, error) {

	if err := optType.Validate(); err != nil {
		return 0, err
	}

	if T <= 0 || sigma <= 0 {
		return intrinsic(optType, S, K), nil
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := K * math.Exp(-r*T)

	if optType == Call {
		return S*normCDF(d1) - discount*normCDF(d2), nil
	}
	return discount*normCDF(-d2) - S*normCDF(-d1), nil
}

// intrinsic is the payoff at expiry, the limit of the model as T or sigma go to zero.
func intrinsic(optType OptionType, S, K float64) float64 {
	switch optType {
	case Call:
		return math.Max(0, S-K)
	case Put:
		return math.Max(0, K-S)
	}
	return 0
}

// normCDF computes the cumulative distribution function of the standard normal distribution.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
