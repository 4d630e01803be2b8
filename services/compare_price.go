package services

import (
	"strconv"
	"strings"

	"ica-price-tracker/models"
)

// comparePrefix is the literal every comparison-price string starts with.
// "Jfr-pris" is the Swedish shelf-label abbreviation for "jämförpris".
const comparePrefix = "Jfr-pris "

// unitPhrases maps each "kr/..." unit phrase to its unit code, in match
// order. Longer phrases that share a prefix with a shorter one must come
// first ("kg, ätklar" and "kg u. spad" before the bare "kg"), otherwise the
// short alternative would win, leave the tail unconsumed and fail the whole
// parse.
var unitPhrases = []struct {
	phrase string
	unit   models.PriceUnit
}{
	{"kg, ätklar", models.PerKgEdible},
	{"meter", models.PerMeter},
	{"kg u. spad", models.PerKgWithoutLiquid},
	{"kg", models.PerKg},
	{"liter, drickklar", models.PerLiterDrinkable},
	{"liter", models.PerLiter},
	{"tvätt", models.PerLaundry},
	{"dos", models.PerDose},
	{"portion", models.PerPortion},
	{"st", models.PerItem},
	{"disk", models.PerWash},
	{"lit exkl. pant", models.PerLiterExcludingDeposit},
}

// ParseCompareText parses a promotional comparison-price string of the exact
// form "Jfr-pris <price> <unit>", where <price> uses a comma as the decimal
// separator and <unit> is one of the fixed "kr/..." phrases. The whole input
// must be consumed. It is a pure function; a failed parse simply means no
// price override is available from this text.
func ParseCompareText(input string) (models.ComparePrice, bool) {
	rest, ok := strings.CutPrefix(input, comparePrefix)
	if !ok {
		return models.ComparePrice{}, false
	}

	price, rest, ok := parseCommaFloat(rest)
	if !ok {
		return models.ComparePrice{}, false
	}

	rest, ok = strings.CutPrefix(rest, " ")
	if !ok {
		return models.ComparePrice{}, false
	}

	unit, rest, ok := parsePriceUnit(rest)
	if !ok || rest != "" {
		return models.ComparePrice{}, false
	}

	return models.ComparePrice{Code: &unit, Price: price}, true
}

// parseCommaFloat reads "<digits>" or "<digits>,<digits>" from the front of
// input; a missing fractional part defaults to 0. A trailing comma with no
// digits after it is left unconsumed.
func parseCommaFloat(input string) (float64, string, bool) {
	intPart, rest := takeDigits(input)
	if intPart == "" {
		return 0, input, false
	}

	frac := "0"
	if strings.HasPrefix(rest, ",") {
		if f, r := takeDigits(rest[1:]); f != "" {
			frac = f
			rest = r
		}
	}

	value, err := strconv.ParseFloat(intPart+"."+frac, 64)
	if err != nil {
		return 0, input, false
	}
	return value, rest, true
}

// parsePriceUnit reads "kr/" followed by the first matching unit phrase.
func parsePriceUnit(input string) (models.PriceUnit, string, bool) {
	rest, ok := strings.CutPrefix(input, "kr/")
	if !ok {
		return "", input, false
	}

	for _, alt := range unitPhrases {
		if strings.HasPrefix(rest, alt.phrase) {
			return alt.unit, rest[len(alt.phrase):], true
		}
	}
	return "", input, false
}

func takeDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
