package normalizer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leilauto/internal/domain"
	"leilauto/internal/source"
	"leilauto/testdata/utils"
)

var scrapedAt = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := New("https://www.leiloesbr.com.br", logger)
	require.NoError(t, err)
	return n
}

func TestNormalize_TitleParserFallback(t *testing.T) {
	n := newNormalizer(t)

	v, err := n.Normalize(source.RawListing{
		Title:     "FIAT UNO 2015 1.0 FLEX",
		DetailURL: "/lote/123",
	}, 7, scrapedAt)
	require.NoError(t, err)

	assert.Equal(t, utils.Ptr("FIAT"), v.Brand)
	assert.Equal(t, utils.Ptr("UNO"), v.Model)
	assert.Equal(t, utils.Ptr(2015), v.YearModel)
	assert.Equal(t, int64(7), v.AuctioneerID)
	assert.True(t, v.IsActive)
	assert.Nil(t, v.DealScore)
}

func TestNormalize_StructuredFieldsWin(t *testing.T) {
	n := newNormalizer(t)

	v, err := n.Normalize(source.RawListing{
		Title:     "Lote 42 - veículo de passeio",
		DetailURL: "/lote/42",
		Brand:     "CHEVROLET",
		Model:     "ONIX LT",
		YearModel: utils.Ptr(2020),
		Mileage:   utils.Ptr(0),
	}, 1, scrapedAt)
	require.NoError(t, err)

	assert.Equal(t, utils.Ptr("CHEVROLET"), v.Brand)
	assert.Equal(t, utils.Ptr("ONIX LT"), v.Model)
	assert.Equal(t, utils.Ptr(2020), v.YearModel)
	// 0 is a valid mileage, not an absent value.
	require.NotNil(t, v.Mileage)
	assert.Equal(t, 0, *v.Mileage)
}

func TestNormalize_StateValidation(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		state string
		want  *string
	}{
		{"SP", utils.Ptr("SP")},
		{"sp", utils.Ptr("SP")},
		{"rj", utils.Ptr("RJ")},
		{"SAO PAULO", nil},
		{"XX", nil},
		{"", nil},
	}
	for _, tt := range tests {
		v, err := n.Normalize(source.RawListing{
			Title:     "FIAT ARGO 2021",
			DetailURL: "/l/1",
			State:     tt.state,
		}, 1, scrapedAt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.State, "state %q", tt.state)
	}
}

func TestNormalize_CityBlacklist(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		city string
		want *string
	}{
		{"Campinas", utils.Ptr("Campinas")},
		{"BANCO BRADESCO S.A.", nil},
		{"Leilão Online", nil},
		{"Pátio do Leiloeiro", nil},
		{"", nil},
	}
	for _, tt := range tests {
		v, err := n.Normalize(source.RawListing{
			Title:     "FIAT ARGO 2021",
			DetailURL: "/l/1",
			City:      tt.city,
		}, 1, scrapedAt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.City, "city %q", tt.city)
	}
}

func TestNormalize_LocationTextSplit(t *testing.T) {
	n := newNormalizer(t)

	v, err := n.Normalize(source.RawListing{
		Title:        "FIAT ARGO 2021",
		DetailURL:    "/l/1",
		LocationText: "São José dos Campos - SP",
	}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Equal(t, utils.Ptr("São José dos Campos"), v.City)
	assert.Equal(t, utils.Ptr("SP"), v.State)

	v, err = n.Normalize(source.RawListing{
		Title:        "FIAT ARGO 2021",
		DetailURL:    "/l/1",
		LocationText: "Curitiba/PR",
	}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Equal(t, utils.Ptr("Curitiba"), v.City)
	assert.Equal(t, utils.Ptr("PR"), v.State)
}

func TestNormalize_AuctionTypeMapping(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		label string
		want  domain.AuctionType
	}{
		{"Leilão Judicial", domain.AuctionJudicial},
		{"Alienação Fiduciária", domain.AuctionLienBased},
		{"Veículo retomado de banco", domain.AuctionBankRepossession},
		{"Apreensão DETRAN", domain.AuctionSeizure},
		{"Leilão Híbrido", domain.AuctionHybrid},
		{"Presencial", domain.AuctionInPerson},
		{"", domain.AuctionOnline},
		{"qualquer outra coisa", domain.AuctionOnline},
	}
	for _, tt := range tests {
		v, err := n.Normalize(source.RawListing{
			Title:           "FIAT ARGO 2021",
			DetailURL:       "/l/1",
			AuctionTypeText: tt.label,
		}, 1, scrapedAt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.AuctionType, "label %q", tt.label)
	}
}

func TestNormalize_VehicleTypeMapping(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		title string
		label string
		want  domain.VehicleType
	}{
		{"HONDA CG 160 2022", "Motocicleta", domain.VehicleMotorcycle},
		{"SCANIA R450 2019", "Caminhão", domain.VehicleTruck},
		{"FIAT FIORINO 2018", "Furgão", domain.VehicleVan},
		{"FIAT ARGO 2021", "Carro de passeio", domain.VehicleCar},
		{"FIAT ARGO 2021", "", domain.VehicleCar},
		{"Sucata diversos", "", domain.VehicleOther},
	}
	for _, tt := range tests {
		v, err := n.Normalize(source.RawListing{
			Title:           tt.title,
			DetailURL:       "/l/1",
			VehicleTypeText: tt.label,
		}, 1, scrapedAt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.VehicleType, "title %q label %q", tt.title, tt.label)
	}
}

func TestNormalize_URLResolution(t *testing.T) {
	n := newNormalizer(t)

	v, err := n.Normalize(source.RawListing{
		Title:     "FIAT ARGO 2021",
		DetailURL: "/lote/99",
		ThumbURL:  "//cdn.leiloesbr.com.br/img/99.jpg",
	}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Equal(t, "https://www.leiloesbr.com.br/lote/99", v.OriginalURL)
	assert.Equal(t, utils.Ptr("https://cdn.leiloesbr.com.br/img/99.jpg"), v.ThumbnailURL)

	v, err = n.Normalize(source.RawListing{
		Title:     "FIAT ARGO 2021",
		DetailURL: "https://outro.site/abs",
	}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Equal(t, "https://outro.site/abs", v.OriginalURL)
}

func TestNormalize_NoIdentityFails(t *testing.T) {
	n := newNormalizer(t)

	_, err := n.Normalize(source.RawListing{Title: "FIAT ARGO 2021"}, 1, scrapedAt)
	assert.Error(t, err)

	// External id alone is enough.
	v, err := n.Normalize(source.RawListing{Title: "FIAT ARGO 2021", ExternalID: "abc"}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Equal(t, utils.Ptr("abc"), v.ExternalID)
}

func TestNormalize_MoneyFieldsAbsentNotZero(t *testing.T) {
	n := newNormalizer(t)

	v, err := n.Normalize(source.RawListing{
		Title:      "FIAT ARGO 2021",
		DetailURL:  "/l/1",
		CurrentBid: source.ParseMoney("sem lance"),
	}, 1, scrapedAt)
	require.NoError(t, err)
	assert.Nil(t, v.CurrentBid)
	assert.Nil(t, v.MinimumBid)
	assert.Nil(t, v.AppraisedValue)
}
