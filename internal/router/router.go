package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appMiddleware "github.com/FACorreiaa/go-khonkaen-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/container"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Container         *container.Container
	AllowedOrigins    []string
	RequestsPerMinute int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request id, logger, recoverer) is applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	c := cfg.Container
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
		}

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", c.CollectionHandler.ListCollections)
			r.Post("/", c.CollectionHandler.CreateCollection)

			r.Route("/{collectionID}", func(r chi.Router) {
				r.Get("/", c.CollectionHandler.GetCollection)
				r.Put("/", c.CollectionHandler.SaveCollection)
				r.Delete("/", c.CollectionHandler.DeleteCollection)
				r.Get("/budget", c.CollectionHandler.GetBudget)
				r.Post("/weather", c.WeatherHandler.RefreshForecast)
				r.Post("/days", c.CollectionHandler.AddNewDay)

				r.Route("/days/{day}", func(r chi.Router) {
					r.Get("/", c.PlanHandler.GetDay)
					r.Get("/weather", c.WeatherHandler.GetDayWeather)

					r.Post("/stops", c.PlanHandler.AddStop)
					r.Put("/stops", c.PlanHandler.ReplaceStops)
					r.Delete("/stops/{index}", c.PlanHandler.RemoveStop)
					r.Patch("/stops/{index}", c.PlanHandler.UpdateStopField)

					r.Put("/transportation", c.PlanHandler.UpdateTransportation)
					r.Put("/accommodation", c.PlanHandler.UpdateAccommodation)
					r.Put("/activities", c.PlanHandler.UpdateActivities)

					r.Put("/start", c.RouteHandler.SetStartLocation)
					r.Post("/start/current", c.RouteHandler.SetStartFromCoordinates)
					r.Get("/route", c.RouteHandler.GetRoute)
					r.Get("/route/{index}", c.RouteHandler.DisplaySegment)
				})
			})
		})

		r.Get("/weather", c.WeatherHandler.GetForecast)

		r.Route("/places", func(r chi.Router) {
			r.Get("/search", c.PlacesHandler.SearchPlaces)
			r.Get("/nearby", c.PlacesHandler.Nearby)
			r.Get("/{placeID}", c.PlacesHandler.GetPlaceDetails)
		})

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/search", c.HotelHandler.SearchHotels)
			r.Get("/{hotelID}", c.HotelHandler.GetHotelSummary)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/search", c.ProductHandler.SearchProducts)
			r.Get("/ideas", c.ProductHandler.GetProductIdeas)
		})

		if c.ChatHandler != nil {
			r.Route("/chat", func(r chi.Router) {
				r.Post("/sessions", c.ChatHandler.StartSession)
				r.Group(func(r chi.Router) {
					r.Use(appMiddleware.RequireSession(c.SessionTokens))
					r.Post("/messages", c.ChatHandler.SendMessage)
					r.Get("/messages", c.ChatHandler.GetHistory)
					r.Delete("/messages", c.ChatHandler.ClearHistory)
				})
			})
		}
	})

	return r
}
