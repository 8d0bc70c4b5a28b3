package main

import (
	announcehandler "brigade/internal/announce/handler"
	announcerepo "brigade/internal/announce/repository"
	announceservice "brigade/internal/announce/service"
	eventshandler "brigade/internal/events/handler"
	eventsrepo "brigade/internal/events/repository"
	eventsservice "brigade/internal/events/service"
	eventsvalidator "brigade/internal/events/validator"
	followuphandler "brigade/internal/followup/handler"
	followupservice "brigade/internal/followup/service"
	settingshandler "brigade/internal/settings/handler"
	settingsrepo "brigade/internal/settings/repository"
	settingsservice "brigade/internal/settings/service"
	staffinghandler "brigade/internal/staffing/handler"
	staffingrepo "brigade/internal/staffing/repository"
	staffingservice "brigade/internal/staffing/service"
	staffingvalidator "brigade/internal/staffing/validator"
	teamhandler "brigade/internal/team/handler"
	teamrepo "brigade/internal/team/repository"
	teamservice "brigade/internal/team/service"
	teamvalidator "brigade/internal/team/validator"
	"brigade/pkg/app"
	"brigade/pkg/clock"
	"brigade/pkg/config"
	"brigade/pkg/contracts"
	"brigade/pkg/kafka"
	kafka_config "brigade/pkg/kafka/config"
)

const ServiceName = "staffing"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.OutboundTopic, cfg.OutboundDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
	}()

	cfg.Log.Info("Starting staffing service")

	apiHandlers, publicHandlers := initHandlers(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(apiHandlers, publicHandlers)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) ([]contracts.Handler, []contracts.Handler) {
	clk := clock.System()

	eventRepo := eventsrepo.NewMongoEventRepository(cfg)
	teamRepo := teamrepo.NewMongoTeamMemberRepository(cfg)
	settingsRepo := settingsrepo.NewMongoSettingsRepository(cfg)
	sessionRepo := staffingrepo.NewMongoSessionRepository(cfg)
	requestRepo := staffingrepo.NewMongoRequestRepository(cfg)
	announceRepo := announcerepo.NewMongoAnnouncementRepository(cfg)

	eventService := eventsservice.NewEventService(eventRepo, eventsvalidator.NewEventValidator(cfg.Log), cfg)
	teamService := teamservice.NewTeamMemberService(teamRepo, teamvalidator.NewTeamMemberValidator(cfg.Log), cfg)
	settingsService := settingsservice.NewSettingsService(settingsRepo, cfg)

	followUpService := followupservice.NewFollowUpService(
		requestRepo,
		eventService,
		teamService,
		settingsService,
		producer,
		clk,
		cfg,
	)

	staffingService := staffingservice.NewStaffingService(
		sessionRepo,
		requestRepo,
		eventService,
		teamService,
		settingsService,
		followUpService,
		staffingvalidator.NewStaffingValidator(cfg.Log),
		clk,
		cfg,
	)

	announceService := announceservice.NewAnnouncementService(
		announceRepo,
		requestRepo,
		eventService,
		settingsService,
		clk,
		cfg,
	)

	cfg.Log.Info("Staffing services initialized", "database", cfg.MongoDatabaseName)

	apiHandlers := []contracts.Handler{
		eventshandler.NewEventHandler(eventService, cfg.Log),
		teamhandler.NewTeamMemberHandler(teamService, cfg.Log),
		settingshandler.NewSettingsHandler(settingsService, cfg.Log),
		staffinghandler.NewStaffingHandler(staffingService, cfg.Log),
		followuphandler.NewFollowUpHandler(followUpService, cfg.Log),
		announcehandler.NewAnnouncementHandler(announceService, cfg.Log),
	}

	publicHandlers := []contracts.Handler{
		staffinghandler.NewPublicHandler(staffingService, cfg.Log),
		announcehandler.NewPublicFormHandler(announceService, cfg.Log),
	}

	return apiHandlers, publicHandlers
}
