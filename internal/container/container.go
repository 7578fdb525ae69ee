package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	database "github.com/FACorreiaa/go-khonkaen-travel-planner/app/db"
	appMiddleware "github.com/FACorreiaa/go-khonkaen-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/config"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/chat"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	generativeAI "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/hotel"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/plan"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/product"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/route"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/weather"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/booking"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/googlemaps"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/lazada"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/providers/openweather"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	SessionTokens *appMiddleware.SessionTokens

	CollectionHandler *collection.HandlerImpl
	PlanHandler       *plan.HandlerImpl
	RouteHandler      *route.HandlerImpl
	WeatherHandler    *weather.HandlerImpl
	PlacesHandler     *places.HandlerImpl
	HotelHandler      *hotel.HandlerImpl
	ProductHandler    *product.HandlerImpl
	// ChatHandler is nil when the model key or session secret is missing.
	ChatHandler *chat.HandlerImpl
}

// Providers lets tests replace the outbound clients.
type Providers struct {
	Maps     ports.MapsProvider
	Weather  ports.WeatherProvider
	Hotels   ports.HotelProvider
	Products ports.ProductProvider
	Model    ports.ChatModel
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	store, err := c.initStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	p := Providers{
		Maps:     googlemaps.New(cfg.Providers.Maps, logger),
		Weather:  openweather.New(cfg.Providers.Weather, logger),
		Hotels:   booking.New(cfg.Providers.Booking, logger),
		Products: lazada.New(cfg.Providers.Lazada, logger),
	}
	model, err := generativeAI.NewAIClient(ctx, cfg.Providers.Gemini, logger)
	switch {
	case err == nil:
		p.Model = model
	case errors.Is(err, generativeAI.ErrMissingAPIKey):
		logger.Warn("GOOGLE_GEMINI_API_KEY not set, assistant disabled and product ideas use the fallback list")
	default:
		c.Close()
		return nil, fmt.Errorf("failed to initialise generative model: %w", err)
	}

	if err = c.Wire(store, p); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initStore(ctx context.Context) (ports.CollectionStore, error) {
	backend := strings.ToLower(strings.TrimSpace(c.Config.Storage.Backend))
	c.Logger.Info("Initialising collection store", slog.String("backend", backend))

	switch backend {
	case "", config.BackendMemory:
		return collection.NewMemoryStore(), nil
	case config.BackendPostgres:
		dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
		if err != nil {
			return nil, err
		}
		if err = database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
			return nil, err
		}
		c.Pool, err = database.Init(ctx, dbConfig.ConnectionURL, c.Logger)
		if err != nil {
			return nil, err
		}
		if !database.WaitForDB(ctx, c.Pool, c.Logger) {
			return nil, errors.New("database not ready")
		}
		return collection.NewPostgresStore(c.Pool, c.Logger), nil
	case config.BackendRedis:
		rdb, err := database.InitRedis(ctx, c.Config, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Redis = rdb
		return collection.NewRedisStore(rdb, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Wire builds every service and handler on top of store and p.
func (c *Container) Wire(store ports.CollectionStore, p Providers) error {
	cfg, logger := c.Config, c.Logger
	pc := cfg.Planner

	loc := time.UTC
	if pc.TimeZone != "" {
		l, err := time.LoadLocation(pc.TimeZone)
		if err != nil {
			return fmt.Errorf("invalid planner time zone %q: %w", pc.TimeZone, err)
		}
		loc = l
	}
	city := types.LatLng{Lat: pc.CityLat, Lng: pc.CityLng}

	weatherService := weather.NewServiceImpl(p.Weather, city, logger)
	collectionService := collection.NewServiceImpl(store, weatherService, collection.Options{
		MaxTripDays:          pc.MaxTripDays,
		RecommendedMaxBudget: pc.RecommendedMaxBudget,
		Location:             loc,
	}, logger)
	routeService := route.NewServiceImpl(collectionService, p.Maps, route.Options{
		LegTimeout:        cfg.Routing.LegTimeout,
		MaxConcurrentLegs: cfg.Routing.MaxConcurrentLegs,
		Mode:              ports.TravelMode(cfg.Routing.TravelMode),
		CacheTTL:          cfg.Routing.CacheTTL,
	}, logger)
	planService := plan.NewServiceImpl(collectionService, routeService, loc, logger)
	placesService := places.NewServiceImpl(p.Maps, places.Options{
		City:         city,
		RadiusMeters: pc.SearchRadiusMeters,
	}, logger)
	hotelService := hotel.NewServiceImpl(p.Hotels, logger)
	productService := product.NewServiceImpl(p.Products, p.Model, logger)

	c.CollectionHandler = collection.NewHandlerImpl(collectionService, logger)
	c.PlanHandler = plan.NewHandlerImpl(planService, logger)
	c.RouteHandler = route.NewHandlerImpl(routeService, logger)
	c.WeatherHandler = weather.NewHandlerImpl(weatherService, collectionService, logger)
	c.PlacesHandler = places.NewHandlerImpl(placesService, logger)
	c.HotelHandler = hotel.NewHandlerImpl(hotelService, logger)
	c.ProductHandler = product.NewHandlerImpl(productService, logger)

	if p.Model == nil {
		return nil
	}
	tokens, err := appMiddleware.NewSessionTokens(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
	if err != nil {
		logger.Warn("SESSION_JWT_SECRET not set, assistant disabled", slog.Any("error", err))
		return nil
	}
	c.SessionTokens = tokens
	chatService := chat.NewServiceImpl(p.Model, chat.NewSessionStore(tokens.TTL()), tokens, collectionService, loc, logger)
	c.ChatHandler = chat.NewHandlerImpl(chatService, logger)
	return nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis client", slog.Any("error", err))
		}
	}
}
