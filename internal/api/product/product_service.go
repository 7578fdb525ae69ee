package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const maxIdeas = 10

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Search(ctx context.Context, keywords string, page int, sort types.ProductSort) ([]types.Product, error)
	// Ideas suggests search keywords. It always returns a usable list.
	Ideas(ctx context.Context) []string
}

type ServiceImpl struct {
	logger   *slog.Logger
	provider ports.ProductProvider
	model    ports.ChatModel
}

// NewServiceImpl builds the product service. model may be nil, in which
// case Ideas serves the fallback list.
func NewServiceImpl(provider ports.ProductProvider, model ports.ChatModel, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		provider: provider,
		model:    model,
	}
}

func (s *ServiceImpl) Search(ctx context.Context, keywords string, page int, sort types.ProductSort) ([]types.Product, error) {
	ctx, span := otel.Tracer("ProductService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("keywords", keywords),
		attribute.Int("page", page),
		attribute.String("sort", string(sort)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	keywords = strings.TrimSpace(keywords)
	if page == 0 {
		page = 1
	}
	if sort == "" {
		sort = types.SortPopular
	}
	var problems []string
	if keywords == "" {
		problems = append(problems, "keywords are required")
	}
	if page < 1 {
		problems = append(problems, "page must be at least 1")
	}
	if !sort.Valid() {
		problems = append(problems, fmt.Sprintf("unknown sort %q", sort))
	}
	if len(problems) > 0 {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, &types.ValidationError{Problems: problems}
	}

	products, err := s.provider.SearchProducts(ctx, keywords, page, sort)
	switch {
	case err == nil:
		l.DebugContext(ctx, "Products found", slog.Int("count", len(products)))
		span.SetStatus(codes.Ok, "Products found")
		return products, nil
	case errors.Is(err, types.ErrNotFound):
		return []types.Product{}, nil
	default:
		l.ErrorContext(ctx, "Product search failed", slog.String("keywords", keywords), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, fmt.Errorf("product search: %w", err)
	}
}

func (s *ServiceImpl) Ideas(ctx context.Context) []string {
	ctx, span := otel.Tracer("ProductService").Start(ctx, "Ideas")
	defer span.End()

	l := s.logger.With(slog.String("method", "Ideas"))

	if s.model == nil {
		span.SetAttributes(attribute.Bool("fallback", true))
		return fallback()
	}

	response, err := s.model.GenerateContent(ctx, ideasPrompt)
	if err != nil {
		l.WarnContext(ctx, "Product ideas generation failed, using fallback", slog.Any("error", err))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("fallback", true))
		return fallback()
	}

	ideas, err := ParseIdeas(response)
	if err != nil {
		l.WarnContext(ctx, "Product ideas were not a keyword list, using fallback", slog.Any("error", err))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("fallback", true))
		return fallback()
	}

	span.SetStatus(codes.Ok, "Ideas generated")
	return ideas
}

// ParseIdeas reads a JSON array of keywords out of a model answer. Blank and
// duplicate entries are dropped and the list is capped at ten.
func ParseIdeas(response string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: product ideas: %v", types.ErrParseFailure, err)
	}

	seen := make(map[string]struct{}, len(raw))
	ideas := make([]string, 0, min(len(raw), maxIdeas))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ideas = append(ideas, k)
		if len(ideas) == maxIdeas {
			break
		}
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: product ideas: empty list", types.ErrParseFailure)
	}
	return ideas, nil
}

func fallback() []string {
	return append([]string(nil), FallbackIdeas...)
}
