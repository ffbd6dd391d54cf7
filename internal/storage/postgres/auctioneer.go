package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"leilauto/internal/domain"
)

// ErrAuctioneerNotFound reports a name with no registry row.
var ErrAuctioneerNotFound = errors.New("auctioneer not found")

// AuctioneerStore is the registry of known auction houses.
type AuctioneerStore struct {
	db *sqlx.DB
}

func NewAuctioneerStore(db *sqlx.DB) *AuctioneerStore {
	return &AuctioneerStore{db: db}
}

// GetByName resolves an auctioneer by its registered name. A missing entry
// is an error; the orchestrator fails that source and keeps going.
func (s *AuctioneerStore) GetByName(ctx context.Context, name string) (*domain.Auctioneer, error) {
	var a domain.Auctioneer
	err := s.db.GetContext(ctx, &a,
		"SELECT id, name, website FROM auctioneers WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("auctioneer %q: %w", name, ErrAuctioneerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auctioneer %q: %w", name, err)
	}
	return &a, nil
}

// List returns all registered auctioneers.
func (s *AuctioneerStore) List(ctx context.Context) ([]domain.Auctioneer, error) {
	var all []domain.Auctioneer
	err := s.db.SelectContext(ctx, &all, "SELECT id, name, website FROM auctioneers ORDER BY id")
	return all, err
}
