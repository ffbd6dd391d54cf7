// Package scoring rates how favorable a listing's price is. The weights and
// tier thresholds are hand-tuned business constants; do not adjust them
// without product sign-off.
package scoring

import (
	"math"
	"time"

	"leilauto/internal/domain"
)

// Category labels for score ranges.
const (
	CategoryExcellent = "excellent"
	CategoryGood      = "good"
	CategoryFair      = "fair"
	CategoryHigh      = "high"
)

const baseScore = 50

// Result is the outcome of scoring one vehicle.
type Result struct {
	Score          int    `json:"score"`
	DiscountVsFipe int    `json:"discount_vs_fipe"`
	Category       string `json:"category"`
}

// Score computes the 0-100 deal score for a vehicle snapshot. It is pure:
// no I/O, and the same vehicle with the same reference time always yields
// the same result. Absent fields contribute nothing.
func Score(v *domain.Vehicle, now time.Time) Result {
	score := float64(baseScore)
	discount := 0.0

	if v.FipePrice != nil && *v.FipePrice > 0 && v.CurrentBid != nil && *v.CurrentBid > 0 {
		discount = (*v.FipePrice - *v.CurrentBid) / *v.FipePrice * 100
		switch {
		case discount >= 30:
			score += 40
		case discount >= 20:
			score += 30
		case discount >= 10:
			score += 20
		case discount >= 5:
			score += 10
		case discount < 0:
			score -= 20
		}
	}

	if v.YearManufacture != nil {
		age := now.Year() - *v.YearManufacture
		switch {
		case age <= 3:
			score += 20
		case age <= 5:
			score += 15
		case age <= 10:
			score += 10
		case age <= 15:
			score += 5
		}
	}

	if v.Mileage != nil {
		switch {
		case *v.Mileage < 30_000:
			score += 15
		case *v.Mileage < 60_000:
			score += 10
		case *v.Mileage < 100_000:
			score += 5
		case *v.Mileage > 200_000:
			score -= 5
		}
	}

	switch v.AuctionType {
	case domain.AuctionOnline:
		score += 15
	case domain.AuctionHybrid:
		score += 10
	case domain.AuctionJudicial, domain.AuctionLienBased,
		domain.AuctionBankRepossession, domain.AuctionSeizure,
		domain.AuctionInPerson:
		score += 5
	}

	if v.HasFinancing {
		score += 10
	}

	final := int(math.Round(score))
	if final > 100 {
		final = 100
	}
	if final < 0 {
		final = 0
	}

	return Result{
		Score:          final,
		DiscountVsFipe: int(math.Round(discount)),
		Category:       categorize(final),
	}
}

func categorize(score int) string {
	switch {
	case score >= 80:
		return CategoryExcellent
	case score >= 65:
		return CategoryGood
	case score >= 50:
		return CategoryFair
	default:
		return CategoryHigh
	}
}
