package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// aroundMargin widens an "around $X" query to a price band of X±50
const aroundMargin = 50

var productIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bproduct\s+#?(\d+)\b`),
	regexp.MustCompile(`(?i)\bitem\s+#?(\d+)\b`),
	regexp.MustCompile(`(?i)\bid\s+#?(\d+)\b`),
	regexp.MustCompile(`(?i)\bnumber\s+(\d+)\b`),
}

// ExtractProductID finds an explicit product reference like "product 12" or
// "item #3" in the message.
func ExtractProductID(message string) (int64, bool) {
	for _, re := range productIDPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil && id > 0 {
				return id, true
			}
		}
	}
	return 0, false
}

var (
	priceBetweenRe = regexp.MustCompile(`(?i)\bbetween\s+\$?(\d+(?:\.\d+)?)\s+and\s+\$?(\d+(?:\.\d+)?)`)
	priceUnderRe   = regexp.MustCompile(`(?i)\b(?:under|below|less\s+than|cheaper\s+than|at\s+most|up\s+to)\s+\$?(\d+(?:\.\d+)?)`)
	priceOverRe    = regexp.MustCompile(`(?i)\b(?:over|above|more\s+than|at\s+least)\s+\$?(\d+(?:\.\d+)?)`)
	priceAroundRe  = regexp.MustCompile(`(?i)\b(?:around|about|roughly|approximately)\s+\$?(\d+(?:\.\d+)?)`)
	priceBudgetRe  = regexp.MustCompile(`(?i)\bbudget\s+(?:of|is)?\s*\$?(\d+(?:\.\d+)?)`)
)

// ExtractPriceRange parses price constraints from the message. Returned
// bounds are 0 when unset.
func ExtractPriceRange(message string) (minPrice, maxPrice float64, ok bool) {
	if m := priceBetweenRe.FindStringSubmatch(message); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	}
	if m := priceUnderRe.FindStringSubmatch(message); m != nil {
		hi, _ := strconv.ParseFloat(m[1], 64)
		return 0, hi, true
	}
	if m := priceOverRe.FindStringSubmatch(message); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		return lo, 0, true
	}
	if m := priceAroundRe.FindStringSubmatch(message); m != nil {
		mid, _ := strconv.ParseFloat(m[1], 64)
		lo := mid - aroundMargin
		if lo < 0 {
			lo = 0
		}
		return lo, mid + aroundMargin, true
	}
	if m := priceBudgetRe.FindStringSubmatch(message); m != nil {
		hi, _ := strconv.ParseFloat(m[1], 64)
		return 0, hi, true
	}
	return 0, 0, false
}

// ExtractCategory matches a known catalog category mentioned in the message.
// Longer category names are tried first so "home audio" wins over "audio".
func ExtractCategory(message string, categories []string) string {
	lower := strings.ToLower(message)

	best := ""
	for _, cat := range categories {
		c := strings.ToLower(strings.TrimSpace(cat))
		if c == "" {
			continue
		}
		if strings.Contains(lower, c) && len(c) > len(best) {
			best = cat
		}
	}
	return best
}
