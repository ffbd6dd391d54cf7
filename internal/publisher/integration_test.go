//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"leilauto/internal/domain"
	"leilauto/testdata/utils"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange",
		RoutingKey: "test-routing-key",
		QueueName:  "test-queue",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishCreate() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-create",
		RoutingKey: "test-routing-key-create",
		QueueName:  "test-queue-create",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	now := time.Now().Truncate(time.Millisecond)
	vehicle := &domain.Vehicle{
		ID:           1,
		AuctioneerID: 1,
		ExternalID:   utils.Ptr("sb-123"),
		OriginalURL:  "https://example.com/lote/123",
		Title:        "CHEVROLET ONIX 2020",
		Brand:        utils.Ptr("CHEVROLET"),
		Model:        utils.Ptr("ONIX"),
		YearModel:    utils.Ptr(2020),
		CurrentBid:   utils.Ptr(35000.0),
		VehicleType:  domain.VehicleCar,
		AuctionType:  domain.AuctionOnline,
		IsActive:     true,
		ScrapedAt:    now,
	}

	err = pub.PublishVehicle(s.ctx, vehicle, true)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	var received VehicleMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal("create", received.Action)
	s.Require().NotNil(received.Vehicle.ExternalID)
	s.Equal("sb-123", *received.Vehicle.ExternalID)
	s.Equal("CHEVROLET ONIX 2020", received.Vehicle.Title)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishUpdate() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-update",
		RoutingKey: "test-routing-key-update",
		QueueName:  "test-queue-update",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	vehicle := &domain.Vehicle{
		ID:           2,
		AuctioneerID: 1,
		OriginalURL:  "https://example.com/lote/456",
		Title:        "FIAT STRADA 2019",
		IsActive:     true,
	}

	err = pub.PublishVehicle(s.ctx, vehicle, false)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	var received VehicleMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal("update", received.Action)
	s.Equal("https://example.com/lote/456", received.Vehicle.OriginalURL)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishReport() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-report",
		RoutingKey: "test-routing-key-report",
		QueueName:  "test-queue-report",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	report := &domain.RunReport{
		Success:         true,
		Timestamp:       time.Now().UTC(),
		ExecutionTimeMs: 1234,
		Summary: domain.RunSummary{
			TotalAuctioneers: 3,
			TotalScraped:     42,
			TotalCreated:     10,
			TotalUpdated:     30,
			TotalErrors:      2,
		},
		Results: []domain.SourceResult{
			{Auctioneer: "Superbid", Success: true, Scraped: 42, Created: 10, Updated: 30, Errors: 2, ExecutionTimeMs: 900},
		},
	}

	err = pub.PublishReport(s.ctx, report)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)
	s.Equal("application/json", msg.ContentType)

	var received ReportMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.True(received.Report.Success)
	s.Equal(3, received.Report.Summary.TotalAuctioneers)
	s.Len(received.Report.Results, 1)
	s.Equal("Superbid", received.Report.Results[0].Auctioneer)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessagePersistence() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-persist",
		RoutingKey: "test-routing-key-persist",
		QueueName:  "test-queue-persist",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	vehicle := &domain.Vehicle{
		AuctioneerID: 1,
		OriginalURL:  "https://example.com/lote/999",
		Title:        "HONDA CIVIC 2018",
	}

	err = pub.PublishVehicle(s.ctx, vehicle, true)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.NotNil(msg)

	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
