package main

import (
	"context"

	"roombook/internal/bookings/events"
	bookingshandler "roombook/internal/bookings/handler"
	bookingsrepo "roombook/internal/bookings/repository"
	bookingsservice "roombook/internal/bookings/service"
	bookingsvalidator "roombook/internal/bookings/validator"
	"roombook/internal/demo"
	"roombook/internal/health/checks"
	resourceshandler "roombook/internal/resources/handler"
	resourcesrepo "roombook/internal/resources/repository"
	resourcesservice "roombook/internal/resources/service"
	resourcesvalidator "roombook/internal/resources/validator"
	searchhandler "roombook/internal/search/handler"
	searchservice "roombook/internal/search/service"
	"roombook/pkg/app"
	"roombook/pkg/clock"
	"roombook/pkg/config"
	"roombook/pkg/contracts"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
	"roombook/pkg/logger"
)

const serviceName = "rooms"

func main() {
	cfg := config.Load(serviceName)
	cfg.Log.Info("Starting Rooms service")

	publisher, checkers := initEvents(cfg)

	resourceService := initResourceService(cfg.Log)
	bookingRepo := bookingsrepo.NewMemoryBookingRepository()
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		resourceService.Exists,
		cfg.BusinessHours(),
		clock.Real{},
		publisher,
		cfg.Log,
	)
	searchService := searchservice.NewSearchService(resourceService, bookingService, cfg.Log)
	cfg.Log.Info("Services initialized", "business_hours", cfg.BusinessHours().String())

	if cfg.SeedDemo {
		if _, err := demo.Seed(context.Background(), resourceService, cfg.Log); err != nil {
			cfg.Log.Fatal("Failed to seed demo data", "error", err)
		}
	}

	checkers = append([]contracts.HealthChecker{checks.NewLedgerChecker(bookingRepo)}, checkers...)

	application := app.NewApplication(cfg)
	application.SetApp(checkers,
		resourceshandler.NewResourceHandler(resourceService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		searchhandler.NewSearchHandler(searchService, cfg.Log),
	)
	application.OnShutdown(
		app.ShutdownHook{Name: "flush booking events", Fn: func(context.Context) error {
			bookingService.Flush()
			return nil
		}},
		app.ShutdownHook{Name: "close event publisher", Fn: func(context.Context) error {
			return publisher.Close()
		}},
	)
	application.Run()
}

func initResourceService(log *logger.Logger) resourcesservice.ResourceService {
	return resourcesservice.NewResourceService(
		resourcesrepo.NewMemoryResourceRepository(),
		resourcesvalidator.NewResourceValidator(log),
		clock.Real{},
		log,
	)
}

// initEvents builds the booking event publisher. Without Kafka, events are
// dropped.
func initEvents(cfg *config.Config) (events.Publisher, []contracts.HealthChecker) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	producer.Use(metrics.ProducerMiddleware())

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, serviceName),
		[]contracts.HealthChecker{checks.NewProducerChecker(producer, metrics)}
}
