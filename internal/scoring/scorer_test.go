package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leilauto/internal/domain"
	"leilauto/testdata/utils"
)

var refTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestScore_DiscountTiers(t *testing.T) {
	tests := []struct {
		name         string
		fipe         float64
		bid          float64
		wantScore    int
		wantDiscount int
		wantCategory string
	}{
		{"thirty percent discount", 50_000, 35_000, 90, 30, CategoryExcellent},
		{"twenty percent discount", 50_000, 40_000, 80, 20, CategoryExcellent},
		{"ten percent discount", 50_000, 45_000, 70, 10, CategoryGood},
		{"five percent discount", 50_000, 47_500, 60, 5, CategoryFair},
		{"small discount adds nothing", 50_000, 49_000, 50, 2, CategoryFair},
		{"priced above fipe penalized", 50_000, 55_000, 30, -10, CategoryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &domain.Vehicle{
				FipePrice:  utils.Ptr(tt.fipe),
				CurrentBid: utils.Ptr(tt.bid),
			}
			got := Score(v, refTime)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantDiscount, got.DiscountVsFipe)
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}
}

func TestScore_MissingFipeNotComputable(t *testing.T) {
	v := &domain.Vehicle{CurrentBid: utils.Ptr(30_000.0)}
	got := Score(v, refTime)
	assert.Equal(t, baseScore, got.Score)
	assert.Equal(t, 0, got.DiscountVsFipe)

	v = &domain.Vehicle{FipePrice: utils.Ptr(50_000.0)}
	got = Score(v, refTime)
	assert.Equal(t, baseScore, got.Score)
	assert.Equal(t, 0, got.DiscountVsFipe)

	// Zero values are "not computable", not a 100% discount.
	v = &domain.Vehicle{FipePrice: utils.Ptr(0.0), CurrentBid: utils.Ptr(30_000.0)}
	got = Score(v, refTime)
	assert.Equal(t, 0, got.DiscountVsFipe)
}

func TestScore_AgeTiers(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2024, baseScore + 20},
		{2021, baseScore + 15},
		{2017, baseScore + 10},
		{2012, baseScore + 5},
		{2005, baseScore},
	}
	for _, tt := range tests {
		v := &domain.Vehicle{YearManufacture: utils.Ptr(tt.year)}
		assert.Equal(t, tt.want, Score(v, refTime).Score, "year %d", tt.year)
	}
}

func TestScore_MileageTiers(t *testing.T) {
	tests := []struct {
		mileage int
		want    int
	}{
		{0, baseScore + 15},
		{29_999, baseScore + 15},
		{45_000, baseScore + 10},
		{99_999, baseScore + 5},
		{150_000, baseScore},
		{250_000, baseScore - 5},
	}
	for _, tt := range tests {
		v := &domain.Vehicle{Mileage: utils.Ptr(tt.mileage)}
		assert.Equal(t, tt.want, Score(v, refTime).Score, "mileage %d", tt.mileage)
	}
}

func TestScore_AuctionTypeAndFinancing(t *testing.T) {
	assert.Equal(t, baseScore+15, Score(&domain.Vehicle{AuctionType: domain.AuctionOnline}, refTime).Score)
	assert.Equal(t, baseScore+10, Score(&domain.Vehicle{AuctionType: domain.AuctionHybrid}, refTime).Score)
	assert.Equal(t, baseScore+5, Score(&domain.Vehicle{AuctionType: domain.AuctionJudicial}, refTime).Score)
	assert.Equal(t, baseScore, Score(&domain.Vehicle{AuctionType: "mystery"}, refTime).Score)
	assert.Equal(t, baseScore+10, Score(&domain.Vehicle{HasFinancing: true}, refTime).Score)
}

func TestScore_ClampedToRange(t *testing.T) {
	best := &domain.Vehicle{
		FipePrice:       utils.Ptr(80_000.0),
		CurrentBid:      utils.Ptr(40_000.0),
		YearManufacture: utils.Ptr(2025),
		Mileage:         utils.Ptr(10_000),
		AuctionType:     domain.AuctionOnline,
		HasFinancing:    true,
	}
	// 50 + 40 + 20 + 15 + 15 + 10 = 150, clamped.
	assert.Equal(t, 100, Score(best, refTime).Score)

	worst := &domain.Vehicle{
		FipePrice:       utils.Ptr(40_000.0),
		CurrentBid:      utils.Ptr(60_000.0),
		YearManufacture: utils.Ptr(1995),
		Mileage:         utils.Ptr(300_000),
	}
	got := Score(worst, refTime)
	assert.GreaterOrEqual(t, got.Score, 0)
	assert.LessOrEqual(t, got.Score, 100)
	assert.Equal(t, CategoryHigh, got.Category)
}

func TestScore_Deterministic(t *testing.T) {
	v := &domain.Vehicle{
		FipePrice:       utils.Ptr(62_350.0),
		CurrentBid:      utils.Ptr(48_900.0),
		YearManufacture: utils.Ptr(2019),
		Mileage:         utils.Ptr(74_210),
		AuctionType:     domain.AuctionHybrid,
		HasFinancing:    true,
	}
	first := Score(v, refTime)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Score(v, refTime))
	}
}
