// Package source defines the raw listing record adapters produce and the
// field-parsing helpers shared by adapters that scrape text out of markup.
package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RawListing is the half-populated intermediate record one adapter extracts
// for one listing. Its schema follows whatever the site exposes: JSON-API
// adapters fill the structured fields, HTML adapters mostly the *Text ones.
// It is ephemeral and owned by the adapter invocation that produced it.
type RawListing struct {
	ExternalID string
	Title      string
	DetailURL  string
	ThumbURL   string
	LotNumber  string

	// Structured fields, when the source exposes them directly.
	Brand           string
	Model           string
	Version         string
	YearModel       *int
	YearManufacture *int
	Mileage         *int
	Color           string
	FuelType        string
	Transmission    string
	Condition       string
	CurrentBid      *float64
	MinimumBid      *float64
	AppraisedValue  *float64
	HasFinancing    bool
	AuctionDate     *time.Time

	// Free-text fields left for the normalizer.
	VehicleTypeText string
	AuctionTypeText string
	LocationText    string
	City            string
	State           string
}

var moneyRe = regexp.MustCompile(`[\d.,]+`)

// ParseMoney extracts a numeric amount from Brazilian-formatted currency
// text ("R$ 35.000,00"). Currency symbol and thousands separators are
// stripped and the decimal comma becomes a point. Text that does not parse
// numerically yields nil — absent, never zero.
func ParseMoney(text string) *float64 {
	match := moneyRe.FindString(text)
	if match == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(match, ".", "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

var digitsRe = regexp.MustCompile(`\d+`)

// ParseInt extracts an integer from text like "74.210 km", ignoring
// thousands separators. Unparseable text yields nil.
func ParseInt(text string) *int {
	cleaned := strings.ReplaceAll(text, ".", "")
	match := digitsRe.FindString(cleaned)
	if match == "" {
		return nil
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &value
}
