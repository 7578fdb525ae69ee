package hotel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const maxFacilities = 5

const manualEntryNotice = "ไม่พบข้อมูลโรงแรม กรุณากรอกที่พักด้วยตนเอง"

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	SearchDestinations(ctx context.Context, query string) ([]types.HotelDestination, error)
	// Summary never fails on provider trouble; it falls back to manual entry.
	Summary(ctx context.Context, q types.HotelQuery) (*types.HotelSummary, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	provider ports.HotelProvider
}

func NewServiceImpl(provider ports.HotelProvider, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
	}
}

func (s *ServiceImpl) SearchDestinations(ctx context.Context, query string) ([]types.HotelDestination, error) {
	ctx, span := otel.Tracer("HotelService").Start(ctx, "SearchDestinations", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &types.ValidationError{Problems: []string{"query is required"}}
	}

	found, err := s.provider.SearchDestinations(ctx, query)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "Destinations found")
		return found, nil
	case errors.Is(err, types.ErrNotFound):
		return []types.HotelDestination{}, nil
	default:
		s.logger.WarnContext(ctx, "Hotel search failed", slog.String("query", query), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, fmt.Errorf("hotel search: %w", err)
	}
}

func (s *ServiceImpl) Summary(ctx context.Context, q types.HotelQuery) (*types.HotelSummary, error) {
	ctx, span := otel.Tracer("HotelService").Start(ctx, "Summary", trace.WithAttributes(
		attribute.String("hotel.id", q.ID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Summary"), slog.String("hotelID", q.ID))

	var problems []string
	if strings.TrimSpace(q.ID) == "" {
		problems = append(problems, "hotel id is required")
	}
	if !q.CheckIn.IsZero() && !q.CheckOut.IsZero() && !q.CheckOut.After(q.CheckIn.Time) {
		problems = append(problems, "checkout must be after checkin")
	}
	if q.Adults < 0 {
		problems = append(problems, "adults must not be negative")
	}
	if len(problems) > 0 {
		return nil, &types.ValidationError{Problems: problems}
	}
	if q.Adults == 0 {
		q.Adults = 1
	}

	details, err := s.provider.GetDetails(ctx, q)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Hotel details unavailable", slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Ok, "Manual entry fallback")
		return &types.HotelSummary{Found: false, ManualEntry: true, Notice: manualEntryNotice}, nil
	}

	span.SetStatus(codes.Ok, "Summary built")
	return Summarize(details), nil
}

// Summarize condenses provider details into the accommodation card.
func Summarize(d types.HotelDetails) *types.HotelSummary {
	sum := &types.HotelSummary{
		Found:      true,
		ID:         d.ID,
		Name:       d.Name,
		Address:    d.Address,
		Facilities: d.Facilities,
	}
	if len(sum.Facilities) > maxFacilities {
		sum.Facilities = sum.Facilities[:maxFacilities]
	}
	if len(d.Rooms) > 0 {
		room := d.Rooms[0]
		sum.RoomDetails = room.Description
		if len(room.Photos) > 0 {
			sum.RoomPhoto = room.Photos[0]
		}
	}
	if d.NightlyPrice != nil {
		sum.NightlyPrice = formatNightly(*d.NightlyPrice, d.Currency)
	}
	return sum
}

func formatNightly(value float64, currency string) string {
	amount := strconv.FormatFloat(value, 'f', -1, 64)
	if currency == "" || strings.EqualFold(currency, "THB") {
		return "฿" + amount + " ต่อคืน"
	}
	return amount + " " + strings.ToUpper(currency) + " ต่อคืน"
}
