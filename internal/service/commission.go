package service

import (
	"regexp"
	"strings"

	"timber-market/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCommissionRate is the platform's cut when nothing else is configured.
const DefaultCommissionRate = 0.05

// priceRe matches the semi-structured price grammar "<number> <currency>/<unit>",
// e.g. "120 EUR/m³" or "15 EUR/db". The number may use a decimal comma.
var priceRe = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)\s*([A-Za-z]+)\s*/\s*(.+?)\s*$`)

// CommissionCalculator derives the platform commission from a stock item's
// price string. Parsing is intentionally forgiving: an unrecognized price or
// a missing quantity measure yields a zero commission rather than an error,
// because a deal must still be recorded even when its pricing is uncertain.
type CommissionCalculator struct {
	rate   decimal.Decimal
	logger *zap.Logger
}

// NewCommissionCalculator creates a calculator with the given rate; rates
// outside (0, 1] fall back to the default.
func NewCommissionCalculator(rate float64) *CommissionCalculator {
	if rate <= 0 || rate > 1 {
		rate = DefaultCommissionRate
	}
	return &CommissionCalculator{
		rate:   decimal.NewFromFloat(rate),
		logger: util.GetLogger(),
	}
}

// Rate returns the configured commission rate
func (c *CommissionCalculator) Rate() float64 {
	return c.rate.InexactFloat64()
}

// Amount computes round2(unitPrice * measure * rate) for the given price
// string. Volume-priced units multiply by cubicMeters, piece-priced units by
// quantity. Returns 0 when the price cannot be parsed or the matching measure
// is absent.
func (c *CommissionCalculator) Amount(price string, cubicMeters float64, quantity int) float64 {
	m := priceRe.FindStringSubmatch(price)
	if m == nil {
		c.parseFailure(price, "unrecognized format")
		return 0
	}

	unitPrice, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		c.parseFailure(price, "bad numeric value")
		return 0
	}

	var measure decimal.Decimal
	switch unit := strings.ToLower(m[3]); unit {
	case "m3", "m³":
		if cubicMeters <= 0 {
			c.parseFailure(price, "volume measure absent")
			return 0
		}
		measure = decimal.NewFromFloat(cubicMeters)
	case "db", "pc", "pcs", "piece":
		if quantity <= 0 {
			c.parseFailure(price, "piece count absent")
			return 0
		}
		measure = decimal.NewFromInt(int64(quantity))
	default:
		c.parseFailure(price, "unknown unit")
		return 0
	}

	return unitPrice.Mul(measure).Mul(c.rate).Round(2).InexactFloat64()
}

func (c *CommissionCalculator) parseFailure(price, reason string) {
	util.CommissionParseFailuresTotal.Inc()
	c.logger.Warn("Commission degraded to zero",
		zap.String("price", price),
		zap.String("reason", reason))
}
