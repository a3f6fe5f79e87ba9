package main

import (
	availabilityhandler "gleam/internal/availability/handler"
	availabilityrepo "gleam/internal/availability/repository"
	availabilityservice "gleam/internal/availability/service"
	availabilityvalidator "gleam/internal/availability/validator"
	authhandler "gleam/internal/auth/handler"
	authmiddleware "gleam/internal/auth/middleware"
	authservice "gleam/internal/auth/service"
	bookinghandler "gleam/internal/bookings/handler"
	bookingrepo "gleam/internal/bookings/repository"
	bookingservice "gleam/internal/bookings/service"
	bookingvalidator "gleam/internal/bookings/validator"
	"gleam/pkg/app"
	"gleam/pkg/config"
	"gleam/pkg/kafka"
	kafka_config "gleam/pkg/kafka/config"
	"gleam/pkg/sealer"
)

const ServiceName = "gleam-server"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting booking server")

	producer := initProducer(cfg)
	defer func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka producer", "error", err)
			}
		}
	}()

	sessionSealer, err := sealer.New(cfg.SessionKey)
	if err != nil {
		cfg.Log.Fatal("Invalid session key", "error", err)
	}

	auth := authservice.NewAuthService(sessionSealer, cfg)
	requireAdmin := authmiddleware.RequireAdmin(auth, cfg.Log)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)
	availabilityRepo := availabilityrepo.NewMongoAvailabilityRepository(cfg)

	availabilitySvc := availabilityservice.NewAvailabilityService(
		availabilityRepo,
		bookingRepo,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)

	var events bookingservice.EventPublisher
	if producer != nil {
		events = producer
	}
	bookingSvc := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		availabilityRepo,
		bookingvalidator.NewBookingValidator(cfg.Log),
		events,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		authhandler.NewAuthHandler(auth, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log, requireAdmin),
		bookinghandler.NewBookingHandler(bookingSvc, cfg.Log, requireAdmin),
	)
	serverApp.Run()
}

// initProducer builds the booking-events producer, or nil when the event
// pipeline is disabled.
func initProducer(cfg *config.Config) *kafka.Producer {
	if cfg.KafkaDisabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaTopic)
	return producer
}
