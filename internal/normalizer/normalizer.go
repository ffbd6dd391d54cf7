// Package normalizer maps an adapter's raw listing into the canonical
// vehicle record. Scoring is not applied here; deal_score stays unset.
package normalizer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"leilauto/internal/domain"
	"leilauto/internal/source"
	"leilauto/internal/titles"
)

// validStates is the 27 Brazilian federative unit codes.
var validStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// cityBlacklist rejects institutional names that sites sometimes put in the
// city field.
var cityBlacklist = []string{
	"BANCO", "LEILÃO", "LEILAO", "LEILOEIRO", "FINANCEIRA", "SEGURADORA",
	"CONSÓRCIO", "CONSORCIO", "TRIBUNAL", "JUSTIÇA", "JUSTICA",
}

// Normalizer converts raw listings from one source into canonical vehicles.
type Normalizer struct {
	baseURL *url.URL
	logger  *slog.Logger
}

// New builds a normalizer for a source. baseURL resolves relative detail
// and image URLs; an unparseable baseURL is an error since every listing
// from that source would come out with broken links.
func New(baseURL string, logger *slog.Logger) (*Normalizer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	return &Normalizer{baseURL: base, logger: logger}, nil
}

// Normalize maps one raw listing onto the canonical schema. The only hard
// failure is a listing with no usable identity (no detail URL and no
// external id); everything else degrades to nil fields.
func (n *Normalizer) Normalize(raw source.RawListing, auctioneerID int64, scrapedAt time.Time) (*domain.Vehicle, error) {
	detailURL := n.resolveURL(raw.DetailURL)
	if detailURL == "" && raw.ExternalID == "" {
		return nil, errors.New("listing has no detail url and no external id")
	}

	v := &domain.Vehicle{
		AuctioneerID: auctioneerID,
		OriginalURL:  detailURL,
		Title:        strings.TrimSpace(raw.Title),
		HasFinancing: raw.HasFinancing,
		AuctionDate:  raw.AuctionDate,
		IsActive:     true,
		ScrapedAt:    scrapedAt,
	}

	if raw.ExternalID != "" {
		v.ExternalID = ptr(raw.ExternalID)
	}
	if thumb := n.resolveURL(raw.ThumbURL); thumb != "" {
		v.ThumbnailURL = ptr(thumb)
	}
	if raw.LotNumber != "" {
		v.LotNumber = ptr(strings.TrimSpace(raw.LotNumber))
	}

	n.applyDescription(v, raw)
	n.applyLocation(v, raw)

	v.CurrentBid = raw.CurrentBid
	v.MinimumBid = raw.MinimumBid
	v.AppraisedValue = raw.AppraisedValue
	v.AuctionType = mapAuctionType(raw.AuctionTypeText)

	return v, nil
}

// applyDescription fills brand/model/year/etc, falling back to the title
// parser when the source did not provide structured fields.
func (n *Normalizer) applyDescription(v *domain.Vehicle, raw source.RawListing) {
	brand := strings.TrimSpace(raw.Brand)
	model := strings.TrimSpace(raw.Model)
	v.YearModel = raw.YearModel
	v.YearManufacture = raw.YearManufacture

	if brand == "" || model == "" {
		parsed := titles.Parse(raw.Title)
		if brand == "" && parsed.Brand != nil {
			brand = *parsed.Brand
		}
		if model == "" && parsed.Model != nil {
			model = *parsed.Model
		}
		if v.YearModel == nil {
			v.YearModel = parsed.Year
		}
	}

	if brand != "" {
		v.Brand = ptr(brand)
	}
	if model != "" {
		v.Model = ptr(model)
	}
	if s := strings.TrimSpace(raw.Version); s != "" {
		v.Version = ptr(s)
	}
	if s := strings.TrimSpace(raw.Color); s != "" {
		v.Color = ptr(s)
	}
	if s := strings.TrimSpace(raw.FuelType); s != "" {
		v.FuelType = ptr(s)
	}
	if s := strings.TrimSpace(raw.Transmission); s != "" {
		v.Transmission = ptr(s)
	}
	if s := strings.TrimSpace(raw.Condition); s != "" {
		v.Condition = ptr(s)
	}
	v.Mileage = raw.Mileage

	v.VehicleType = mapVehicleType(raw.VehicleTypeText, v.Brand != nil)
}

// applyLocation validates state against the UF whitelist and city against
// the institutional blacklist; anything that fails is stored as nil.
func (n *Normalizer) applyLocation(v *domain.Vehicle, raw source.RawListing) {
	city, state := raw.City, raw.State
	if city == "" && state == "" && raw.LocationText != "" {
		city, state = splitLocation(raw.LocationText)
	}

	state = strings.ToUpper(strings.TrimSpace(state))
	if _, ok := validStates[state]; ok {
		v.State = ptr(state)
	} else if state != "" {
		n.logger.Debug("dropping invalid state", "state", state, "title", v.Title)
	}

	city = strings.TrimSpace(city)
	if city != "" && !cityBlacklisted(city) {
		v.City = ptr(city)
	}
}

func cityBlacklisted(city string) bool {
	upper := strings.ToUpper(city)
	for _, kw := range cityBlacklist {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// splitLocation handles "Cidade - UF" and "Cidade/UF" location strings.
func splitLocation(text string) (city, state string) {
	for _, sep := range []string{" - ", "-", "/", ","} {
		if idx := strings.LastIndex(text, sep); idx >= 0 {
			maybeState := strings.TrimSpace(text[idx+len(sep):])
			if len(maybeState) == 2 {
				return strings.TrimSpace(text[:idx]), maybeState
			}
		}
	}
	return strings.TrimSpace(text), ""
}

func mapAuctionType(label string) domain.AuctionType {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "judicial"):
		return domain.AuctionJudicial
	case strings.Contains(lower, "fiduciária"), strings.Contains(lower, "fiduciaria"),
		strings.Contains(lower, "alienação"), strings.Contains(lower, "alienacao"):
		return domain.AuctionLienBased
	case strings.Contains(lower, "banco"), strings.Contains(lower, "retomado"):
		return domain.AuctionBankRepossession
	case strings.Contains(lower, "apreensão"), strings.Contains(lower, "apreensao"),
		strings.Contains(lower, "apreendido"):
		return domain.AuctionSeizure
	case strings.Contains(lower, "híbrido"), strings.Contains(lower, "hibrido"):
		return domain.AuctionHybrid
	case strings.Contains(lower, "presencial"):
		return domain.AuctionInPerson
	default:
		return domain.AuctionOnline
	}
}

func mapVehicleType(label string, hasBrand bool) domain.VehicleType {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "moto"):
		return domain.VehicleMotorcycle
	case strings.Contains(lower, "caminhão"), strings.Contains(lower, "caminhao"),
		strings.Contains(lower, "truck"):
		return domain.VehicleTruck
	case strings.Contains(lower, "van"), strings.Contains(lower, "utilitário"),
		strings.Contains(lower, "utilitario"), strings.Contains(lower, "furgão"),
		strings.Contains(lower, "furgao"):
		return domain.VehicleVan
	case strings.Contains(lower, "carro"), strings.Contains(lower, "automóvel"),
		strings.Contains(lower, "automovel"), strings.Contains(lower, "passeio"):
		return domain.VehicleCar
	case hasBrand:
		// A recognized make with no explicit type label is almost always a car.
		return domain.VehicleCar
	default:
		return domain.VehicleOther
	}
}

func (n *Normalizer) resolveURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		n.logger.Debug("dropping unparseable url", "url", raw)
		return ""
	}
	return n.baseURL.ResolveReference(ref).String()
}

func ptr[T any](v T) *T { return &v }
