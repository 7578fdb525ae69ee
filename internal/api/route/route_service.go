package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// noFocus marks a chain with no segment shown on the map.
const noFocus = -1

var _ Service = (*ServiceImpl)(nil)

// Service resolves the travel legs of a day. Segments are derived data and
// are never written to the collection.
type Service interface {
	SetStartLocation(ctx context.Context, collectionID uuid.UUID, day int, location string) (*types.Plan, error)
	SetStartFromCoordinates(ctx context.Context, collectionID uuid.UUID, day int, at types.LatLng) (*types.Plan, error)
	RecomputeRouteSegments(ctx context.Context, collectionID uuid.UUID, day int) (*types.RouteResult, error)
	DisplaySegment(ctx context.Context, collectionID uuid.UUID, day, index int) (*types.RouteSegment, error)
	Invalidate(collectionID uuid.UUID, day int)
}

type Options struct {
	LegTimeout        time.Duration
	MaxConcurrentLegs int
	Mode              ports.TravelMode
	CacheTTL          time.Duration
}

// chainState is the last computed chain for a day. fingerprint identifies
// the start location and stops it was computed from.
type chainState struct {
	fingerprint string
	result      types.RouteResult
}

type ServiceImpl struct {
	logger      *slog.Logger
	collections collection.Service
	maps        ports.MapsProvider
	opts        Options
	chains      *cache.Cache
}

func NewServiceImpl(collections collection.Service, maps ports.MapsProvider, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.LegTimeout <= 0 {
		opts.LegTimeout = 10 * time.Second
	}
	if opts.MaxConcurrentLegs <= 0 {
		opts.MaxConcurrentLegs = 4
	}
	if opts.Mode == "" {
		opts.Mode = ports.TravelDriving
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	return &ServiceImpl{
		logger:      logger,
		collections: collections,
		maps:        maps,
		opts:        opts,
		chains:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

func chainKey(collectionID uuid.UUID, day int) string {
	return fmt.Sprintf("%s:%d", collectionID, day)
}

// endpoints returns the start location followed by every named stop.
// Blank stops are not routable and are left out of the chain.
func endpoints(p *types.Plan) []string {
	out := []string{strings.TrimSpace(p.StartLocation)}
	for _, s := range p.Stops {
		if name := strings.TrimSpace(s.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func fingerprint(points []string) string {
	return strings.Join(points, "\x1f")
}

func (s *ServiceImpl) Invalidate(collectionID uuid.UUID, day int) {
	s.chains.Delete(chainKey(collectionID, day))
}

func (s *ServiceImpl) SetStartLocation(ctx context.Context, collectionID uuid.UUID, day int, location string) (*types.Plan, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "SetStartLocation", trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
	))
	defer span.End()

	location = strings.TrimSpace(location)
	c, err := s.collections.Mutate(ctx, collectionID, func(c *types.Collection) error {
		p := c.Plan(day)
		if p == nil {
			return fmt.Errorf("day %d of collection %s: %w", day, collectionID, types.ErrNotFound)
		}
		p.StartLocation = location
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Set start failed")
		return nil, err
	}
	s.Invalidate(collectionID, day)
	span.SetStatus(codes.Ok, "Start location set")
	return c.Plan(day), nil
}

func (s *ServiceImpl) SetStartFromCoordinates(ctx context.Context, collectionID uuid.UUID, day int, at types.LatLng) (*types.Plan, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "SetStartFromCoordinates", trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SetStartFromCoordinates"))

	if at.Lat < -90 || at.Lat > 90 || at.Lng < -180 || at.Lng > 180 {
		return nil, &types.ValidationError{Problems: []string{"lat must be within [-90, 90] and lng within [-180, 180]"}}
	}

	address, err := s.maps.ReverseGeocode(ctx, at)
	if err != nil {
		l.WarnContext(ctx, "Reverse geocoding failed, start location unchanged", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Reverse geocode failed")
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("no address for the current position: %w", err)
		}
		return nil, fmt.Errorf("could not resolve the current position: %w", err)
	}
	return s.SetStartLocation(ctx, collectionID, day, address)
}

type legOutcome struct {
	segment types.RouteSegment
	err     error
}

func (s *ServiceImpl) RecomputeRouteSegments(ctx context.Context, collectionID uuid.UUID, day int) (*types.RouteResult, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "RecomputeRouteSegments", trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
	))
	defer span.End()

	c, err := s.collections.Get(ctx, collectionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load failed")
		return nil, err
	}
	p := c.Plan(day)
	if p == nil {
		return nil, fmt.Errorf("day %d of collection %s: %w", day, collectionID, types.ErrNotFound)
	}

	points := endpoints(p)
	result, err := s.resolveChain(ctx, day, points)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Route resolution cancelled")
		return nil, err
	}

	s.chains.SetDefault(chainKey(collectionID, day), &chainState{fingerprint: fingerprint(points), result: *result})
	span.SetAttributes(attribute.Int("segments", len(result.Segments)), attribute.Bool("aborted", result.Aborted))
	span.SetStatus(codes.Ok, "Route resolved")
	return result, nil
}

// resolveChain requests every leg of points concurrently. Results keep the
// chain order. A failed first leg aborts the whole chain; any other failed
// leg is skipped with a warning.
func (s *ServiceImpl) resolveChain(ctx context.Context, day int, points []string) (*types.RouteResult, error) {
	l := s.logger.With(slog.String("method", "resolveChain"), slog.Int("day", day))
	result := &types.RouteResult{Day: day, Segments: []types.RouteSegment{}, Focus: noFocus}

	if len(points) < 2 || points[0] == "" {
		return result, nil
	}

	legs := len(points) - 1
	outcomes := make([]legOutcome, legs)

	chainCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(chainCtx)
	g.SetLimit(s.opts.MaxConcurrentLegs)
	for i := 0; i < legs; i++ {
		from, to := points[i], points[i+1]
		g.Go(func() error {
			legCtx, legCancel := context.WithTimeout(gctx, s.opts.LegTimeout)
			defer legCancel()

			seg, err := s.resolveLeg(legCtx, i, from, to)
			outcomes[i] = legOutcome{segment: seg, err: err}
			if err != nil && i == 0 {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := metrics.Get()
	for i, o := range outcomes {
		outcome := "ok"
		if o.err != nil {
			outcome = "failed"
		}
		m.RouteLegsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

		if o.err == nil {
			result.Segments = append(result.Segments, o.segment)
			continue
		}
		warning := fmt.Sprintf("could not compute route from %q to %q", points[i], points[i+1])
		l.WarnContext(ctx, "Route leg failed", slog.Int("leg", i), slog.Any("error", o.err))
		if i == 0 {
			result.Segments = []types.RouteSegment{}
			result.Warnings = []string{warning}
			result.Aborted = true
			return result, nil
		}
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

func (s *ServiceImpl) resolveLeg(ctx context.Context, index int, from, to string) (types.RouteSegment, error) {
	r, err := s.maps.ComputeRoute(ctx, from, to, s.opts.Mode)
	if err != nil {
		return types.RouteSegment{}, err
	}
	if len(r.Legs) == 0 {
		return types.RouteSegment{}, fmt.Errorf("route %q to %q: %w", from, to, types.ErrNotFound)
	}
	return types.RouteSegment{
		Index:    index,
		From:     from,
		To:       to,
		Distance: r.Legs[0].DistanceText,
		Duration: r.Legs[0].DurationText,
	}, nil
}

// DisplaySegment returns segment index of the current chain and focuses the
// map on it. A missing or outdated chain is recomputed first.
func (s *ServiceImpl) DisplaySegment(ctx context.Context, collectionID uuid.UUID, day, index int) (*types.RouteSegment, error) {
	ctx, span := otel.Tracer("RouteService").Start(ctx, "DisplaySegment", trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
		attribute.Int("index", index),
	))
	defer span.End()

	c, err := s.collections.Get(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	p := c.Plan(day)
	if p == nil {
		return nil, fmt.Errorf("day %d of collection %s: %w", day, collectionID, types.ErrNotFound)
	}

	key := chainKey(collectionID, day)
	fp := fingerprint(endpoints(p))
	var state *chainState
	if v, ok := s.chains.Get(key); ok {
		if cs := v.(*chainState); cs.fingerprint == fp {
			state = cs
		}
	}
	if state == nil {
		span.AddEvent("chain recomputed")
		if _, err = s.RecomputeRouteSegments(ctx, collectionID, day); err != nil {
			return nil, err
		}
		v, ok := s.chains.Get(key)
		if !ok {
			return nil, fmt.Errorf("route chain for day %d: %w", day, types.ErrNotFound)
		}
		state = v.(*chainState)
	}

	for _, seg := range state.result.Segments {
		if seg.Index == index {
			next := &chainState{fingerprint: state.fingerprint, result: state.result}
			next.result.Focus = index
			s.chains.SetDefault(key, next)
			span.SetStatus(codes.Ok, "Segment focused")
			out := seg
			return &out, nil
		}
	}
	span.SetStatus(codes.Error, "No such segment")
	return nil, fmt.Errorf("no route segment %d for day %d: %w", index, day, types.ErrNotFound)
}
