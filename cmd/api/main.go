package main

import (
	bookinghandler "tablebook/internal/bookings/handler"
	bookingrepo "tablebook/internal/bookings/repository"
	bookingservice "tablebook/internal/bookings/service"
	bookingvalidator "tablebook/internal/bookings/validator"
	venuehandler "tablebook/internal/venue/handler"
	venuerepo "tablebook/internal/venue/repository"
	venueservice "tablebook/internal/venue/service"
	venuevalidator "tablebook/internal/venue/validator"
	"tablebook/pkg/app"
	"tablebook/pkg/client"
	"tablebook/pkg/config"
	"tablebook/pkg/contracts"
	"tablebook/pkg/kafka"
	kafka_config "tablebook/pkg/kafka/config"
	kafka_middleware "tablebook/pkg/kafka/middleware"
)

const ServiceName = "tablebook-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting table booking service")

	bookingService, events := initBookingService(cfg)
	zoneService, tableService := initVenueServices(cfg)

	sweeper := bookingservice.NewExpirySweeper(bookingService, cfg)
	sweeper.Start()

	appHandler := contracts.Compose(
		bookinghandler.NewBookingHandler(bookingService, cfg.Log, cfg.UploadDir, cfg.MaxUploadSize),
		venuehandler.NewZoneHandler(zoneService, cfg.Log),
		venuehandler.NewTableHandler(tableService, cfg.Log),
	)
	healthHandler := venuehandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, appHandler, healthHandler)
	serverApp.OnShutdown(sweeper.Stop)
	serverApp.OnShutdown(events.Close)
	serverApp.Run()
}

func initBookingService(cfg *config.Config) (bookingservice.BookingService, *bookingservice.EventPublisher) {
	bookingValidator := bookingvalidator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	tableRepo := venuerepo.NewMongoTableRepository(cfg)
	zoneRepo := venuerepo.NewMongoZoneRepository(cfg)

	verifier := client.NewSlipOKClient(cfg.SlipOKAPIURL, cfg.SlipOKBranchID, cfg.SlipOKAPIKey)

	var proofStore bookingservice.ProofStore
	if cfg.CloudinaryURL != "" {
		store, err := client.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Cloudinary store", "error", err)
		}
		proofStore = store
	} else {
		cfg.Log.Fatal("CLOUDINARY_URL is required for payment proof storage")
	}

	events := initEvents(cfg)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		tableRepo,
		zoneRepo,
		bookingValidator,
		verifier,
		proofStore,
		events,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, events
}

func initEvents(cfg *config.Config) *bookingservice.EventPublisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, bookingservice.TopicBookingEvents, bookingservice.TopicBookingEventsDLQ)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, booking events disabled", "error", err)
		return bookingservice.NewEventPublisher(nil, cfg.Log, ServiceName)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	return bookingservice.NewEventPublisher(producer, cfg.Log, ServiceName)
}

func initVenueServices(cfg *config.Config) (venueservice.ZoneService, venueservice.TableService) {
	venueValidator := venuevalidator.NewVenueValidator(cfg.Log)
	zoneRepo := venuerepo.NewMongoZoneRepository(cfg)
	tableRepo := venuerepo.NewMongoTableRepository(cfg)

	zoneService := venueservice.NewZoneService(zoneRepo, venueValidator, cfg)
	tableService := venueservice.NewTableService(tableRepo, zoneRepo, venueValidator, cfg)

	cfg.Log.Info("Venue services initialized")
	return zoneService, tableService
}
