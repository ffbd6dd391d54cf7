// Package titles extracts brand, model and model year from free-text
// auction listing titles. It is a best-effort heuristic: absent fields are
// nil pointers, never errors.
package titles

import (
	"regexp"
	"strconv"
	"strings"
)

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// brands is the vocabulary of makes commonly seen on Brazilian auction
// sites, cars first, then motorcycles and trucks. Matching is
// case-insensitive substring; first hit wins, so multi-word names come
// before any shorter name they contain.
var brands = []string{
	"VOLKSWAGEN", "CHEVROLET", "MERCEDES-BENZ", "MERCEDES", "MITSUBISHI",
	"LAND ROVER", "FIAT", "FORD", "TOYOTA", "HYUNDAI", "HONDA", "RENAULT",
	"NISSAN", "JEEP", "PEUGEOT", "CITROEN", "CITROËN", "BMW", "AUDI",
	"VOLVO", "KIA", "CAOA CHERY", "CHERY", "JAC", "SUZUKI", "SUBARU",
	"DODGE", "RAM", "CHRYSLER", "MINI", "PORSCHE", "JAGUAR", "LEXUS",
	"YAMAHA", "KAWASAKI", "DUCATI", "HARLEY-DAVIDSON", "HARLEY DAVIDSON",
	"TRIUMPH", "DAFRA", "SHINERAY", "SCANIA", "IVECO", "DAF", "MAN",
	"AGRALE", "VOLARE", "MARCOPOLO",
}

// Result holds whatever could be extracted from a title.
type Result struct {
	Brand *string
	Model *string
	Year  *int
}

// Parse scans a listing title for a model year, a known brand and, when both
// were found, the model text between them. Multiple year-like tokens: first
// occurrence wins, with no plausibility check (a price or a future year can
// be matched — observed behavior, preserved).
func Parse(title string) Result {
	var res Result

	yearLoc := yearRe.FindStringIndex(title)
	if yearLoc != nil {
		y, err := strconv.Atoi(title[yearLoc[0]:yearLoc[1]])
		if err == nil {
			res.Year = &y
		}
	}

	upper := strings.ToUpper(title)
	var brandEnd int
	for _, b := range brands {
		if idx := strings.Index(upper, b); idx >= 0 {
			brand := b
			res.Brand = &brand
			brandEnd = idx + len(b)
			break
		}
	}

	// Model is the text strictly between the brand and the year; it needs
	// both boundaries.
	if res.Brand != nil && res.Year != nil && brandEnd <= yearLoc[0] {
		model := strings.TrimSpace(title[brandEnd:yearLoc[0]])
		model = strings.Trim(model, "-/,.")
		model = strings.TrimSpace(model)
		if model != "" {
			res.Model = &model
		}
	}

	return res
}
