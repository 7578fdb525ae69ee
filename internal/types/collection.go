package types

import (
	"time"

	"github.com/google/uuid"
)

// Category is the kind of group a trip is planned for.
type Category string

const (
	CategoryFamily  Category = "family"
	CategoryCouple  Category = "couple"
	CategoryFriends Category = "friends"
	CategorySolo    Category = "solo"
	CategoryStudent Category = "student"
)

// Categories lists every accepted trip category in display order.
var Categories = []Category{CategoryFamily, CategoryCouple, CategoryFriends, CategorySolo, CategoryStudent}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ForecastStatus tells the client whether WeatherForecast holds provider data.
type ForecastStatus string

const (
	ForecastAvailable   ForecastStatus = "available"
	ForecastUnavailable ForecastStatus = "unavailable"
)

// Collection is one trip: trip-wide metadata plus one Plan per day.
type Collection struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Category        Category          `json:"category"`
	StartDate       Date              `json:"startDate"`
	EndDate         Date              `json:"endDate"`
	Budget          float64           `json:"budget"`
	WeatherForecast []WeatherSnapshot `json:"weatherForecast"`
	ForecastStatus  ForecastStatus    `json:"forecastStatus,omitempty"`
	Plans           []Plan            `json:"plans"`
	Revision        int64             `json:"revision"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// TotalDays is the inclusive number of calendar days between StartDate and EndDate.
func (c *Collection) TotalDays() int {
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return 0
	}
	return int(c.EndDate.Sub(c.StartDate.Time).Hours()/24) + 1
}

// PlanIndex returns the slice position of the plan for day, or -1.
func (c *Collection) PlanIndex(day int) int {
	for i := range c.Plans {
		if c.Plans[i].Day == day {
			return i
		}
	}
	return -1
}

// Plan returns a pointer into Plans for the given day, or nil.
func (c *Collection) Plan(day int) *Plan {
	if i := c.PlanIndex(day); i >= 0 {
		return &c.Plans[i]
	}
	return nil
}

// Plan is a single day of a Collection.
type Plan struct {
	Day            int        `json:"day"`
	StartLocation  string     `json:"startLocation"`
	EndLocation    string     `json:"endLocation"`
	Transportation string     `json:"transportation"`
	Accommodation  string     `json:"accommodation"`
	Stops          []Stop     `json:"stops"`
	Activities     []Activity `json:"activities"`
}

// NewPlan returns an empty plan for the given day with non-nil slices.
func NewPlan(day int) Plan {
	return Plan{Day: day, Stops: []Stop{}, Activities: []Activity{}}
}

// Stop is one place to visit within a day. A blank Name is a transient
// state awaiting user input.
type Stop struct {
	Name        string `json:"name"`
	TimeStart   string `json:"timeStart"`
	TimeEnd     string `json:"timeEnd"`
	Description string `json:"description"`
}

// Activity is a costed, timed action within a day. Type is a free-form tag
// (nature, local-food, culture, shopping, nightlife, religious...).
type Activity struct {
	Title       string  `json:"title"`
	Date        Date    `json:"date"`
	TimeStart   string  `json:"timeStart"`
	TimeEnd     string  `json:"timeEnd"`
	Description string  `json:"description"`
	Location    string  `json:"location,omitempty"`
	Cost        float64 `json:"cost"`
	Type        string  `json:"type"`
}

// PlanStatus is derived from the presence of stops and activities.
type PlanStatus string

const (
	PlanEmpty    PlanStatus = "empty"
	PlanPartial  PlanStatus = "partial"
	PlanComplete PlanStatus = "complete"
)

// RouteSegment is one derived travel leg. Index 0 is start to first stop.
type RouteSegment struct {
	Index    int    `json:"index"`
	From     string `json:"from"`
	To       string `json:"to"`
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

// RouteResult is the outcome of recomputing a day's chain. Warnings name
// the endpoints of legs that could not be resolved.
type RouteResult struct {
	Day      int            `json:"day"`
	Segments []RouteSegment `json:"segments"`
	Warnings []string       `json:"warnings,omitempty"`
	Aborted  bool           `json:"aborted"`
	Focus    int            `json:"focus"`
}

// CreateCollectionRequest is the input of the trip creation screen.
type CreateCollectionRequest struct {
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`
	Budget    *float64 `json:"budget"`
}

// CreateCollectionResponse carries non-blocking warnings next to the new trip.
type CreateCollectionResponse struct {
	Collection *Collection `json:"collection"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// CollectionSummary is the dashboard row for a trip.
type CollectionSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	StartDate Date      `json:"startDate"`
	EndDate   Date      `json:"endDate"`
	Days      int       `json:"days"`
	Budget    float64   `json:"budget"`
	Spent     float64   `json:"spent"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DayView is the assembled day record shown by the plan editor.
type DayView struct {
	CollectionID  uuid.UUID        `json:"collectionId"`
	Plan          Plan             `json:"plan"`
	Date          Date             `json:"date"`
	Status        PlanStatus       `json:"status"`
	StopDurations []string         `json:"stopDurations"`
	Weather       *WeatherSnapshot `json:"weather,omitempty"`
	DaySpent      float64          `json:"daySpent"`
}

// BudgetStatus flags whether a trip has spent more than its budget.
type BudgetStatus string

const (
	WithinBudget BudgetStatus = "within_budget"
	OverBudget   BudgetStatus = "over_budget"
)

type BudgetSummary struct {
	Budget    float64            `json:"budget"`
	Spent     float64            `json:"spent"`
	Remaining float64            `json:"remaining"`
	Status    BudgetStatus       `json:"status"`
	PerDay    map[int]float64    `json:"perDay"`
	ByType    map[string]float64 `json:"byType,omitempty"`
}
