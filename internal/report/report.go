package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Format selects how priced quotes are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Places is the number of decimals prices are rounded to.
const Places = 4

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Result pairs a quote with its model price.
type Result struct {
	Quote pricing.OptionQuote
	Price float64
}

// jsonResult is the wire shape shared by the JSON report and the REST API.
type jsonResult struct {
	Type       pricing.OptionType `json:"type"`
	Spot       number             `json:"spot"`
	Strike     number             `json:"strike"`
	Expiry     number             `json:"expiry"`
	Rate       number             `json:"rate"`
	Volatility number             `json:"volatility"`
	Price      string             `json:"price"`
}

// number is a quote input on the wire. Finite values are plain JSON numbers;
// NaN and infinities, which JSON cannot carry, are written as strings.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(FormatPrice(f))
	}
	return json.Marshal(f)
}

// MarshalJSON renders the price as a fixed 4-decimal string.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonResult{
		Type:       r.Quote.Type,
		Spot:       number(r.Quote.Spot),
		Strike:     number(r.Quote.Strike),
		Expiry:     number(r.Quote.TimeToExpiry),
		Rate:       number(r.Quote.RiskFreeRate),
		Volatility: number(r.Quote.Volatility),
		Price:      FormatPrice(r.Price),
	})
}

// FormatPrice rounds p to Places decimals. Non-finite values, which the
// pricer may return for out-of-domain inputs, are spelled out.
func FormatPrice(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NaN"
	case math.IsInf(p, 1):
		return "+Inf"
	case math.IsInf(p, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(p).StringFixed(Places)
}

// Write renders results to w in the requested format.
func Write(w io.Writer, format Format, results []Result) error {
	switch format {
	case FormatText:
		return writeText(w, results)
	case FormatJSON:
		return writeJSON(w, results)
	case FormatCSV:
		return writeCSV(w, results)
	}
	return fmt.Errorf("unknown output format %q", string(format))
}

func writeText(w io.Writer, results []Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s Price: %s\n", label(r.Quote.Type), FormatPrice(r.Price)); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func writeCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	headers := []string{"type", "spot", "strike", "expiry", "rate", "volatility", "price"}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range results {
		q := r.Quote
		row := []string{
			q.Type.String(),
			formatFloat(q.Spot),
			formatFloat(q.Strike),
			formatFloat(q.TimeToExpiry),
			formatFloat(q.RiskFreeRate),
			formatFloat(q.Volatility),
			FormatPrice(r.Price),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

// label capitalises the option type: "call" -> "Call".
func label(t pricing.OptionType) string {
	s := t.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
