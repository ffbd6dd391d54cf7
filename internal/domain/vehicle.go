package domain

import "time"

// VehicleType classifies what kind of vehicle a listing is for.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleTruck      VehicleType = "truck"
	VehicleVan        VehicleType = "van"
	VehicleOther      VehicleType = "other"
)

// AuctionType classifies the legal/commercial modality of an auction.
type AuctionType string

const (
	AuctionJudicial         AuctionType = "judicial"
	AuctionLienBased        AuctionType = "lien_based"
	AuctionBankRepossession AuctionType = "bank_repossession"
	AuctionSeizure          AuctionType = "seizure"
	AuctionOnline           AuctionType = "online"
	AuctionInPerson         AuctionType = "in_person"
	AuctionHybrid           AuctionType = "hybrid"
)

// Vehicle is the canonical, source-independent representation of one auction
// listing. Identity across runs is (auctioneer_id, external_id), falling back
// to (auctioneer_id, original_url) when the source exposes no stable id.
// Fields a source never reports stay nil; 0 is a valid mileage.
type Vehicle struct {
	ID           int64   `db:"id"`
	AuctioneerID int64   `db:"auctioneer_id"`
	ExternalID   *string `db:"external_id"`
	OriginalURL  string  `db:"original_url"`

	Title           string      `db:"title"`
	Brand           *string     `db:"brand"`
	Model           *string     `db:"model"`
	Version         *string     `db:"version"`
	YearModel       *int        `db:"year_model"`
	YearManufacture *int        `db:"year_manufacture"`
	VehicleType     VehicleType `db:"vehicle_type"`
	Color           *string     `db:"color"`
	FuelType        *string     `db:"fuel_type"`
	Transmission    *string     `db:"transmission"`
	Mileage         *int        `db:"mileage"`
	Condition       *string     `db:"condition"`

	State *string `db:"state"`
	City  *string `db:"city"`

	CurrentBid     *float64    `db:"current_bid"`
	MinimumBid     *float64    `db:"minimum_bid"`
	AppraisedValue *float64    `db:"appraised_value"`
	HasFinancing   bool        `db:"has_financing"`
	AuctionType    AuctionType `db:"auction_type"`
	AuctionDate    *time.Time  `db:"auction_date"`

	FipePrice              *float64 `db:"fipe_price"`
	FipeCode               *string  `db:"fipe_code"`
	FipeDiscountPercentage *int     `db:"fipe_discount_percentage"`

	DealScore    *int      `db:"deal_score"`
	IsActive     bool      `db:"is_active"`
	ThumbnailURL *string   `db:"thumbnail_url"`
	LotNumber    *string   `db:"lot_number"`
	ScrapedAt    time.Time `db:"scraped_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IdentityKey returns the value that identifies this vehicle within its
// auctioneer: the external id when present, the original URL otherwise.
func (v *Vehicle) IdentityKey() string {
	if v.ExternalID != nil && *v.ExternalID != "" {
		return *v.ExternalID
	}
	return v.OriginalURL
}

// Auctioneer is one registered auction house.
type Auctioneer struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name"`
	Website *string `db:"website"`
}

// FipePrice is one row of the FIPE reference price table.
type FipePrice struct {
	Brand     string  `db:"brand"`
	Model     string  `db:"model"`
	YearModel int     `db:"year_model"`
	FipeCode  string  `db:"fipe_code"`
	Price     float64 `db:"price"`
}
