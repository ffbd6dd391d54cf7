package vipleiloes

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAdapter() *Adapter {
	return New(Config{
		BaseURL:     "https://www.vipleiloes.com.br",
		MaxPages:    2,
		PageTimeout: time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestToRawListing(t *testing.T) {
	adapter := testAdapter()

	raw, err := adapter.toRawListing(card{
		ExternalID:  "vip-771",
		Title:       "  RENAULT KWID 2022 ZEN  ",
		URL:         "https://www.vipleiloes.com.br/lote/771",
		Image:       "https://cdn.vip/img/771.jpg",
		Lot:         "Lote 7",
		BidText:     "Lance atual: R$ 31.900,00",
		MinBidText:  "R$ 29.000,00",
		Location:    "Belo Horizonte - MG",
		Modality:    "Online",
		Category:    "Carros",
		DateISO:     "2026-05-10T10:00:00-03:00",
		KmText:      "12.480 km",
		Financeable: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "vip-771", raw.ExternalID)
	assert.Equal(t, "RENAULT KWID 2022 ZEN", raw.Title)
	require.NotNil(t, raw.CurrentBid)
	assert.InDelta(t, 31900.0, *raw.CurrentBid, 0.001)
	require.NotNil(t, raw.MinimumBid)
	assert.InDelta(t, 29000.0, *raw.MinimumBid, 0.001)
	require.NotNil(t, raw.Mileage)
	assert.Equal(t, 12480, *raw.Mileage)
	assert.True(t, raw.HasFinancing)
	require.NotNil(t, raw.AuctionDate)
	assert.Equal(t, time.Month(5), raw.AuctionDate.Month())
}

func TestToRawListing_RejectsCardsWithoutIdentity(t *testing.T) {
	adapter := testAdapter()

	_, err := adapter.toRawListing(card{Title: "sem link nem id"})
	assert.Error(t, err)

	_, err = adapter.toRawListing(card{URL: "https://x/lote/1"})
	assert.Error(t, err)

	// An external id alone is a usable identity.
	raw, err := adapter.toRawListing(card{Title: "FIAT MOBI 2023", ExternalID: "vip-1"})
	require.NoError(t, err)
	assert.Equal(t, "vip-1", raw.ExternalID)
}

func TestToRawListing_BadDateAndBidDegrade(t *testing.T) {
	adapter := testAdapter()

	raw, err := adapter.toRawListing(card{
		Title:      "FIAT MOBI 2023",
		ExternalID: "vip-2",
		BidText:    "encerrado",
		DateISO:    "10/05/2026",
	})
	require.NoError(t, err)
	assert.Nil(t, raw.CurrentBid)
	assert.Nil(t, raw.AuctionDate)
}
