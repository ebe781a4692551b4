package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var priceRe = regexp.MustCompile(`₹\s*([0-9.]+)\s*(Lakh|Crore)?`)

// CleanPrice rewrites a listing price such as "₹ 32.8 Lakh" into a human form
// that also shows the absolute value: "₹32.8 Lakh (₹3,280,000.00)". Lakh
// multiplies by 1e5 and Crore by 1e7; a bare amount is treated as already
// absolute. This is a cosmetic transform: anything unparseable is returned
// unchanged.
func CleanPrice(price string) string {
	m := priceRe.FindStringSubmatch(price)
	if m == nil {
		return price
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return price
	}

	display := strconv.FormatFloat(amount, 'f', -1, 64)
	switch strings.ToLower(m[2]) {
	case "lakh":
		return fmt.Sprintf("₹%s Lakh (₹%s)", display, groupThousands(amount*100000))
	case "crore":
		return fmt.Sprintf("₹%s Crore (₹%s)", display, groupThousands(amount*10000000))
	default:
		return fmt.Sprintf("₹%s", groupThousands(amount))
	}
}

// groupThousands renders v with two decimals and comma-separated thousands.
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	return b.String() + "." + fracPart
}
