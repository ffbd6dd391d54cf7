package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"leilauto/internal/domain"
)

// FipeStore reads the FIPE reference price table. The table itself is
// maintained elsewhere; this side only consults it.
type FipeStore struct {
	db *sqlx.DB
}

func NewFipeStore(db *sqlx.DB) *FipeStore {
	return &FipeStore{db: db}
}

// Lookup finds the reference price for a brand/model/year. The model match
// is a prefix match because scraped model strings carry trim suffixes the
// FIPE table does not ("ONIX LT 1.0" vs "ONIX"). A miss returns (nil, nil):
// enrichment degrades, it does not fail.
func (s *FipeStore) Lookup(ctx context.Context, brand, model string, yearModel int) (*domain.FipePrice, error) {
	var fp domain.FipePrice
	query := `
		SELECT brand, model, year_model, fipe_code, price
		FROM fipe_prices
		WHERE brand = UPPER($1)
		  AND year_model = $2
		  AND UPPER($3) LIKE model || '%'
		ORDER BY LENGTH(model) DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &fp, query, brand, yearModel, model)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fp, nil
}
