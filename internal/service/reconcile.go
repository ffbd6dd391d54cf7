package service

import (
	"context"
	"log/slog"
	"time"

	"leilauto/internal/domain"
	"leilauto/internal/scoring"
)

// Reconciler applies one source's normalized batch to the store: enrich with
// FIPE, score, upsert, publish, then retire whatever the batch did not
// contain. Rows are never deleted, only flipped inactive.
type Reconciler struct {
	vehicles  VehicleStore
	fipe      FipeStore
	publisher Publisher
	logger    *slog.Logger
}

func NewReconciler(vehicles VehicleStore, fipe FipeStore, publisher Publisher, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		vehicles:  vehicles,
		fipe:      fipe,
		publisher: publisher,
		logger:    logger,
	}
}

// Apply persists the batch for one auctioneer. Per-vehicle failures are
// counted, not fatal: one bad row must not sink the rest of the batch.
// Deactivation runs only against identities actually observed here, so a
// fetch that failed upstream never reaches this point and never wipes a
// source's inventory.
func (r *Reconciler) Apply(ctx context.Context, auctioneerID int64, batch []*domain.Vehicle) domain.ReconcileStats {
	now := time.Now()
	var stats domain.ReconcileStats

	externalIDs := make([]string, 0, len(batch))
	urls := make([]string, 0, len(batch))

	for _, v := range batch {
		// Every scraped record counts as observed, even when its write
		// fails below: a listing the site still shows must never be
		// retired by our own upsert error.
		if v.ExternalID != nil && *v.ExternalID != "" {
			externalIDs = append(externalIDs, *v.ExternalID)
		}
		if v.OriginalURL != "" {
			urls = append(urls, v.OriginalURL)
		}

		r.enrich(ctx, v)

		res := scoring.Score(v, now)
		v.DealScore = &res.Score
		if v.FipePrice != nil {
			v.FipeDiscountPercentage = &res.DiscountVsFipe
		}

		id, isNew, err := r.vehicles.Upsert(ctx, v)
		if err != nil {
			stats.Errors++
			r.logger.Error("upsert failed",
				"auctioneer_id", auctioneerID,
				"identity", v.IdentityKey(),
				"error", err,
			)
			continue
		}
		v.ID = id

		if isNew {
			stats.Created++
		} else {
			stats.Updated++
		}

		if r.publisher != nil {
			if err := r.publisher.PublishVehicle(ctx, v, isNew); err != nil {
				stats.Errors++
				r.logger.Error("publish failed", "vehicle_id", id, "error", err)
			}
		}
	}

	deactivated, err := r.vehicles.DeactivateMissing(ctx, auctioneerID, externalIDs, urls)
	if err != nil {
		stats.Errors++
		r.logger.Error("deactivate missing failed", "auctioneer_id", auctioneerID, "error", err)
	} else {
		stats.Deactivated += int(deactivated)
	}

	expired, err := r.vehicles.DeactivateExpired(ctx, auctioneerID, now)
	if err != nil {
		stats.Errors++
		r.logger.Error("deactivate expired failed", "auctioneer_id", auctioneerID, "error", err)
	} else {
		stats.Deactivated += int(expired)
	}

	return stats
}

// enrich attaches the FIPE reference price when brand, model and model year
// are all known. A lookup miss or error leaves the vehicle unenriched; the
// score then simply carries no discount component.
func (r *Reconciler) enrich(ctx context.Context, v *domain.Vehicle) {
	if r.fipe == nil || v.Brand == nil || v.Model == nil || v.YearModel == nil {
		return
	}

	fp, err := r.fipe.Lookup(ctx, *v.Brand, *v.Model, *v.YearModel)
	if err != nil {
		r.logger.Warn("fipe lookup failed", "brand", *v.Brand, "model", *v.Model, "error", err)
		return
	}
	if fp == nil {
		return
	}

	v.FipePrice = &fp.Price
	v.FipeCode = &fp.FipeCode
}
