package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// Horizon is the number of days the forecast provider covers.
const Horizon = 5

var _ Service = (*ServiceImpl)(nil)
var _ collection.Forecaster = (*ServiceImpl)(nil)

type Service interface {
	// Forecast returns one entry per trip day from start, at most Horizon.
	// Labels are positional: reading i is dated start+i whatever day the
	// provider's first reading falls on.
	// A provider failure yields Status unavailable and no entries.
	Forecast(ctx context.Context, start, end types.Date) types.ForecastResult
}

type ServiceImpl struct {
	logger   *slog.Logger
	provider ports.WeatherProvider
	at       types.LatLng
}

func NewServiceImpl(provider ports.WeatherProvider, at types.LatLng, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
		at:       at,
	}
}

func (s *ServiceImpl) Forecast(ctx context.Context, start, end types.Date) types.ForecastResult {
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "Forecast", trace.WithAttributes(
		attribute.String("trip.start", start.String()),
		attribute.String("trip.end", end.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Forecast"))

	days := tripDays(start, end)
	if days > Horizon {
		days = Horizon
	}
	if days <= 0 {
		span.SetStatus(codes.Error, "Empty date range")
		return types.ForecastResult{Entries: []types.WeatherSnapshot{}, Status: types.ForecastUnavailable}
	}

	points, err := s.provider.DailyForecast(ctx, s.at)
	if err != nil {
		l.WarnContext(ctx, "Weather forecast unavailable", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Provider failed")
		return types.ForecastResult{Entries: []types.WeatherSnapshot{}, Status: types.ForecastUnavailable}
	}
	if len(points) == 0 {
		l.WarnContext(ctx, "Weather provider returned no readings")
		span.SetStatus(codes.Error, "No readings")
		return types.ForecastResult{Entries: []types.WeatherSnapshot{}, Status: types.ForecastUnavailable}
	}

	n := min(days, len(points))
	entries := make([]types.WeatherSnapshot, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Normalize(points[i], start.AddDays(i)))
	}

	l.DebugContext(ctx, "Weather forecast attached", slog.Int("entries", len(entries)))
	span.SetStatus(codes.Ok, "Forecast fetched")
	return types.ForecastResult{Entries: entries, Status: types.ForecastAvailable}
}

func tripDays(start, end types.Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start.Time) {
		return 0
	}
	return int(end.Sub(start.Time).Hours()/24) + 1
}

// Normalize converts a provider reading to Celsius and km/h and labels it
// with date.
func Normalize(p types.ForecastPoint, date types.Date) types.WeatherSnapshot {
	snap := types.WeatherSnapshot{
		Date:        date,
		Temperature: int(math.Round(p.TempKelvin - 273.15)),
		Condition:   p.Main,
		Description: p.Description,
		Humidity:    p.Humidity,
		WindSpeed:   int(math.Round(p.WindMS * 3.6)),
		Advisory:    Advisory(p.Main),
		Icon:        p.Icon,
	}
	if p.FeelsKelvin != 0 {
		snap.FeelsLike = math.Round((p.FeelsKelvin-273.15)*10) / 10
	}
	if snap.Condition == "" {
		snap.Condition = p.Description
	}
	return snap
}

// Advisory returns travel advice for a main weather condition.
func Advisory(mainCondition string) string {
	switch strings.ToLower(strings.TrimSpace(mainCondition)) {
	case "thunderstorm":
		return "พกร่มไว้ด้วยและหลีกเลี่ยงพื้นที่โล่งแจ้ง"
	case "drizzle", "rain":
		return "พกร่มไว้ด้วย"
	case "snow":
		return "เตรียมเสื้อหนาวและรองเท้าที่เหมาะสม"
	case "clear":
		return "อากาศแจ่มใส เหมาะสำหรับกิจกรรมกลางแจ้ง"
	case "clouds":
		return "มีเมฆเล็กน้อย เหมาะสำหรับกิจกรรมกลางแจ้ง"
	default:
		return "ตรวจสอบสภาพอากาศก่อนออกเดินทาง"
	}
}

// WeatherFor returns the forecast entry for a trip day. The bool is false
// when the day is outside the forecast horizon or no data was fetched.
func WeatherFor(c *types.Collection, day int) (types.WeatherSnapshot, bool) {
	if day <= 0 || c.StartDate.IsZero() {
		return types.WeatherSnapshot{}, false
	}
	date := c.StartDate.AddDays(day - 1)
	for _, w := range c.WeatherForecast {
		if w.Date.Equal(date) {
			return w, true
		}
	}
	return types.WeatherSnapshot{}, false
}

// Refresh fetches a new forecast for an existing trip and stores it. An
// outage keeps the previous entries and marks the forecast unavailable.
func Refresh(ctx context.Context, svc Service, collections collection.Service, id uuid.UUID) (*types.Collection, error) {
	c, err := collections.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result := svc.Forecast(ctx, c.StartDate, c.EndDate)

	updated, err := collections.Mutate(ctx, id, func(c *types.Collection) error {
		c.ForecastStatus = result.Status
		if result.Status == types.ForecastAvailable {
			c.WeatherForecast = result.Entries
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh forecast: %w", err)
	}
	return updated, nil
}
