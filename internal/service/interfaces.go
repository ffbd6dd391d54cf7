package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"leilauto/internal/domain"
	"leilauto/internal/source"
)

type VehicleStore interface {
	Upsert(ctx context.Context, v *domain.Vehicle) (int64, bool, error)
	DeactivateMissing(ctx context.Context, auctioneerID int64, externalIDs, urls []string) (int64, error)
	DeactivateExpired(ctx context.Context, auctioneerID int64, asOf time.Time) (int64, error)
}

type AuctioneerStore interface {
	GetByName(ctx context.Context, name string) (*domain.Auctioneer, error)
}

type FipeStore interface {
	Lookup(ctx context.Context, brand, model string, yearModel int) (*domain.FipePrice, error)
}

type Adapter interface {
	ID() string
	Name() string
	BaseURL() string
	FetchListings(ctx context.Context) ([]source.RawListing, error)
}

type Publisher interface {
	PublishVehicle(ctx context.Context, v *domain.Vehicle, isNew bool) error
	PublishReport(ctx context.Context, report *domain.RunReport) error
	Close() error
}
