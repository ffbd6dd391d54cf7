package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"leilauto/internal/domain"
)

type VehicleStore struct {
	db *sqlx.DB
}

func NewVehicleStore(db *sqlx.DB) *VehicleStore {
	return &VehicleStore{db: db}
}

// Upsert stores one vehicle under its identity key: (auctioneer_id,
// external_id), or (auctioneer_id, original_url) when the source exposes no
// external id. Returns the row id and whether a new row was created.
// Re-scraping the same listing updates, never duplicates.
func (s *VehicleStore) Upsert(ctx context.Context, v *domain.Vehicle) (int64, bool, error) {
	id, err := s.findByIdentity(ctx, v)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("lookup identity: %w", err)
	}

	if err == sql.ErrNoRows {
		newID, err := s.insert(ctx, v)
		if err != nil {
			return 0, false, fmt.Errorf("insert vehicle: %w", err)
		}
		return newID, true, nil
	}

	if err := s.update(ctx, id, v); err != nil {
		return 0, false, fmt.Errorf("update vehicle: %w", err)
	}
	return id, false, nil
}

func (s *VehicleStore) findByIdentity(ctx context.Context, v *domain.Vehicle) (int64, error) {
	var id int64
	if v.ExternalID != nil && *v.ExternalID != "" {
		err := s.db.GetContext(ctx, &id,
			"SELECT id FROM vehicles WHERE auctioneer_id = $1 AND external_id = $2",
			v.AuctioneerID, *v.ExternalID,
		)
		return id, err
	}
	err := s.db.GetContext(ctx, &id,
		"SELECT id FROM vehicles WHERE auctioneer_id = $1 AND original_url = $2",
		v.AuctioneerID, v.OriginalURL,
	)
	return id, err
}

func (s *VehicleStore) insert(ctx context.Context, v *domain.Vehicle) (int64, error) {
	query := `
		INSERT INTO vehicles (
			auctioneer_id, external_id, original_url, title, brand, model,
			version, year_model, year_manufacture, vehicle_type, color,
			fuel_type, transmission, mileage, condition, state, city,
			current_bid, minimum_bid, appraised_value, has_financing,
			auction_type, auction_date, fipe_price, fipe_code,
			fipe_discount_percentage, deal_score, is_active, thumbnail_url,
			lot_number, scraped_at
		) VALUES (
			:auctioneer_id, :external_id, :original_url, :title, :brand, :model,
			:version, :year_model, :year_manufacture, :vehicle_type, :color,
			:fuel_type, :transmission, :mileage, :condition, :state, :city,
			:current_bid, :minimum_bid, :appraised_value, :has_financing,
			:auction_type, :auction_date, :fipe_price, :fipe_code,
			:fipe_discount_percentage, :deal_score, :is_active, :thumbnail_url,
			:lot_number, :scraped_at
		) RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, v)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
	}
	return id, rows.Err()
}

// update refreshes the mutable fields of an existing row. Identity and
// created_at never change; is_active flips back to true since the listing
// was just observed.
func (s *VehicleStore) update(ctx context.Context, id int64, v *domain.Vehicle) error {
	query := `
		UPDATE vehicles SET
			title = :title,
			brand = :brand,
			model = :model,
			version = :version,
			year_model = :year_model,
			year_manufacture = :year_manufacture,
			vehicle_type = :vehicle_type,
			color = :color,
			fuel_type = :fuel_type,
			transmission = :transmission,
			mileage = :mileage,
			condition = :condition,
			state = :state,
			city = :city,
			current_bid = :current_bid,
			minimum_bid = :minimum_bid,
			appraised_value = :appraised_value,
			has_financing = :has_financing,
			auction_type = :auction_type,
			auction_date = :auction_date,
			fipe_price = :fipe_price,
			fipe_code = :fipe_code,
			fipe_discount_percentage = :fipe_discount_percentage,
			deal_score = :deal_score,
			is_active = TRUE,
			thumbnail_url = :thumbnail_url,
			lot_number = :lot_number,
			scraped_at = :scraped_at,
			updated_at = NOW()
		WHERE id = :id`

	arg := struct {
		*domain.Vehicle
		ID int64 `db:"id"`
	}{v, id}

	_, err := s.db.NamedExecContext(ctx, query, arg)
	return err
}

// DeactivateMissing flips is_active off for every active row of this
// auctioneer whose identity key was not observed in the current batch:
// replace-by-presence reconciliation, never a hard delete.
func (s *VehicleStore) DeactivateMissing(ctx context.Context, auctioneerID int64, externalIDs, urls []string) (int64, error) {
	query := `
		UPDATE vehicles
		SET is_active = FALSE, updated_at = NOW()
		WHERE auctioneer_id = $1
		  AND is_active
		  AND COALESCE(external_id, '') <> ALL($2)
		  AND original_url <> ALL($3)`

	res, err := s.db.ExecContext(ctx, query,
		auctioneerID, pq.Array(externalIDs), pq.Array(urls))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeactivateExpired retires rows whose auction date has already passed.
func (s *VehicleStore) DeactivateExpired(ctx context.Context, auctioneerID int64, asOf time.Time) (int64, error) {
	query := `
		UPDATE vehicles
		SET is_active = FALSE, updated_at = NOW()
		WHERE auctioneer_id = $1
		  AND is_active
		  AND auction_date IS NOT NULL
		  AND auction_date < $2`

	res, err := s.db.ExecContext(ctx, query, auctioneerID, asOf)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SearchFilter selects vehicles for the read side. Nil fields are ignored.
type SearchFilter struct {
	AuctioneerID *int64
	Brand        *string
	Model        *string
	VehicleType  *domain.VehicleType
	AuctionType  *domain.AuctionType
	State        *string
	MinScore     *int
	MaxBid       *float64
	OnlyActive   bool

	OrderBy string // deal_score | current_bid | auction_date | scraped_at
	Desc    bool
	Limit   int
	Offset  int
}

var searchOrderColumns = map[string]string{
	"deal_score":   "deal_score",
	"current_bid":  "current_bid",
	"auction_date": "auction_date",
	"scraped_at":   "scraped_at",
}

// Search runs a paginated, filtered query over the canonical vehicles.
func (s *VehicleStore) Search(ctx context.Context, f SearchFilter) ([]domain.Vehicle, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OnlyActive {
		conds = append(conds, "is_active")
	}
	if f.AuctioneerID != nil {
		add("auctioneer_id = $%d", *f.AuctioneerID)
	}
	if f.Brand != nil {
		add("brand ILIKE $%d", *f.Brand)
	}
	if f.Model != nil {
		add("model ILIKE '%%' || $%d || '%%'", *f.Model)
	}
	if f.VehicleType != nil {
		add("vehicle_type = $%d", *f.VehicleType)
	}
	if f.AuctionType != nil {
		add("auction_type = $%d", *f.AuctionType)
	}
	if f.State != nil {
		add("state = $%d", strings.ToUpper(*f.State))
	}
	if f.MinScore != nil {
		add("deal_score >= $%d", *f.MinScore)
	}
	if f.MaxBid != nil {
		add("current_bid <= $%d", *f.MaxBid)
	}

	query := "SELECT * FROM vehicles"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	order, ok := searchOrderColumns[f.OrderBy]
	if !ok {
		order = "scraped_at"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s NULLS LAST", order, direction)

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var vehicles []domain.Vehicle
	if err := s.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		return nil, err
	}
	return vehicles, nil
}
