package main

import (
	"context"

	bookingshandler "vizin/internal/bookings/handler"
	bookingsrepo "vizin/internal/bookings/repository"
	bookingsservice "vizin/internal/bookings/service"
	bookingsvalidator "vizin/internal/bookings/validator"
	"vizin/internal/events"
	"vizin/internal/health"
	"vizin/internal/payments/gateway"
	paymentshandler "vizin/internal/payments/handler"
	paymentsrepo "vizin/internal/payments/repository"
	paymentsservice "vizin/internal/payments/service"
	paymentsvalidator "vizin/internal/payments/validator"
	propertiesrepo "vizin/internal/properties/repository"
	reportshandler "vizin/internal/reports/handler"
	reportsservice "vizin/internal/reports/service"
	"vizin/pkg/app"
	"vizin/pkg/auth"
	"vizin/pkg/clock"
	"vizin/pkg/config"
	"vizin/pkg/kafka"
	kafka_config "vizin/pkg/kafka/config"
	kafka_middleware "vizin/pkg/kafka/middleware"
	"vizin/pkg/obs"
)

const Version = "1.0.0"

func main() {
	cfg := config.Load(config.ServiceBookings)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracerConfig{
		ServiceName: cfg.ServiceName,
		Version:     Version,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}
	serverApp.OnShutdown(shutdownTracer)

	publisher := initPublisher(cfg)
	clk := clock.New()

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	guardRepo := bookingsrepo.NewPropertyGuardRepository(cfg)
	propertyRepo := propertiesrepo.NewMongoPropertyRepository(cfg)
	paymentRepo := paymentsrepo.NewMongoPaymentRepository(cfg)

	bookingService := bookingsservice.NewBookingService(bookingRepo, guardRepo, propertyRepo, publisher, clk, cfg)
	paymentService := paymentsservice.NewPaymentService(paymentRepo, bookingRepo, initGateway(cfg), publisher, clk, cfg)
	reportService := reportsservice.NewReportService(bookingRepo, propertyRepo, cfg)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		health.NewHandler(cfg.Client.Mongo, cfg.Log),
		auth.NewTokens(cfg.JWTSecret),
		bookingshandler.NewBookingHandler(bookingService, bookingsvalidator.NewBookingValidator(cfg.Log), cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, paymentsvalidator.NewPaymentValidator(cfg.Log), cfg.Log),
		reportshandler.NewReportHandler(reportService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events are dropped")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, kafkaCfg.EventsTopic, kafkaCfg.DLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	cfg.Client.SetKafka(producer)

	return events.NewKafkaPublisher(producer, cfg.ServiceName)
}

func initGateway(cfg *config.Config) gateway.Gateway {
	switch cfg.PaymentGateway {
	case config.GatewayOmise:
		charges, err := gateway.NewOmiseClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			cfg.Log.Fatal("Failed to create Omise client", "error", err)
		}
		cfg.Log.Info("Payment gateway configured", "gateway", config.GatewayOmise, "currency", cfg.OmiseCurrency)
		return gateway.NewOmiseGateway(charges, cfg.OmiseCurrency, cfg.Log)
	default:
		cfg.Log.Info("Payment gateway configured", "gateway", config.GatewaySimulated)
		return gateway.NewSimulatedGateway(cfg.SimulatedPrefix)
	}
}
