package marketdata

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// formatPrice renders a dollar amount with thousands separators,
// e.g. 1234.5 -> "$1,234.50".
func formatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return notAvailable
	}
	fixed := decimal.NewFromFloat(price).StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupThousands(parts[0])

	out := "$" + grouped + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatChangePercent renders a signed day change, e.g. 1.234 -> "+1.23%".
// An absent change renders as the empty string, not "N/A" — the UI shows its
// own placeholder.
func formatChangePercent(changePercent *float64) string {
	if changePercent == nil {
		return ""
	}
	sign := ""
	if *changePercent > 0 {
		sign = "+"
	}
	return sign + decimal.NewFromFloat(*changePercent).StringFixed(2) + "%"
}

// formatMarketCapValue renders an absolute dollar capitalization with a
// magnitude suffix: 3.2e12 -> "$3.20T".
func formatMarketCapValue(value float64) string {
	switch {
	case value >= 1e12:
		return "$" + decimal.NewFromFloat(value/1e12).StringFixed(2) + "T"
	case value >= 1e9:
		return "$" + decimal.NewFromFloat(value/1e9).StringFixed(2) + "B"
	case value >= 1e6:
		return "$" + decimal.NewFromFloat(value/1e6).StringFixed(2) + "M"
	case value > 0:
		return "$" + decimal.NewFromFloat(value).StringFixed(2)
	default:
		return notAvailable
	}
}

// formatPeRatio picks the first present fundamentals candidate and renders
// it to two decimals.
func formatPeRatio(peBasicExclExtraTTM, peNormalizedAnnual *float64) string {
	raw := peBasicExclExtraTTM
	if raw == nil {
		raw = peNormalizedAnnual
	}
	if raw == nil || math.IsNaN(*raw) || math.IsInf(*raw, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(*raw).StringFixed(2)
}
