package itinerary

import (
	"strings"
	"time"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// accommodationMarkers are substrings that mark a location as lodging.
// Matching is case-insensitive.
var accommodationMarkers = []string{
	"hotel",
	"hostel",
	"resort",
	"lodging",
	"accommodation",
	"guesthouse",
	"guest house",
	"homestay",
	"place to stay",
	"ที่พัก",
	"บ้านพัก",
	"โรงแรม",
	"รีสอร์ท",
	"โฮมสเตย์",
}

// OnStopsChanged replaces the stops and keeps EndLocation equal to the name
// of the last stop. An empty list keeps the previous EndLocation.
func OnStopsChanged(p *types.Plan, stops []types.Stop) {
	if stops == nil {
		stops = []types.Stop{}
	}
	p.Stops = stops
	if len(stops) > 0 {
		p.EndLocation = stops[len(stops)-1].Name
	}
}

// OnTransportationChanged applies the transport tab. A blank end override
// falls back to the last-stop rule.
func OnTransportationChanged(p *types.Plan, startLocation, endLocationOverride, transportation string) {
	p.StartLocation = strings.TrimSpace(startLocation)
	p.Transportation = transportation
	if strings.TrimSpace(endLocationOverride) != "" {
		p.EndLocation = strings.TrimSpace(endLocationOverride)
		return
	}
	if len(p.Stops) > 0 {
		p.EndLocation = p.Stops[len(p.Stops)-1].Name
	}
}

// OnAccommodationChanged sets only the accommodation.
func OnAccommodationChanged(p *types.Plan, accommodation string) {
	p.Accommodation = accommodation
}

// OnActivitiesChanged replaces the activity list. Activities without a date
// get today's date in loc.
func OnActivitiesChanged(p *types.Plan, activities []types.Activity, loc *time.Location) {
	out := make([]types.Activity, len(activities))
	today := types.Today(loc)
	for i, a := range activities {
		if a.Date.IsZero() {
			a.Date = today
		}
		out[i] = a
	}
	p.Activities = out
}

// LooksLikeAccommodation reports whether location names a place to stay,
// either by marker or by equalling the plan's accommodation text.
func LooksLikeAccommodation(location, accommodation string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return false
	}
	if acc := strings.ToLower(strings.TrimSpace(accommodation)); acc != "" && loc == acc {
		return true
	}
	for _, m := range accommodationMarkers {
		if strings.Contains(loc, m) {
			return true
		}
	}
	return false
}

// SanitizeBeforeSave clears a StartLocation that leaked in from the
// accommodation. It reports whether the plan was changed.
func SanitizeBeforeSave(p *types.Plan) bool {
	if !LooksLikeAccommodation(p.StartLocation, p.Accommodation) {
		return false
	}
	p.StartLocation = ""
	return true
}

// Status classifies the plan by whether it has stops and activities.
func Status(p types.Plan) types.PlanStatus {
	hasStops := len(p.Stops) > 0
	hasActivities := len(p.Activities) > 0
	switch {
	case hasStops && hasActivities:
		return types.PlanComplete
	case hasStops || hasActivities:
		return types.PlanPartial
	default:
		return types.PlanEmpty
	}
}

// NextDay is the day number for a newly appended plan: max(day)+1.
func NextDay(plans []types.Plan) int {
	next := 1
	for _, p := range plans {
		if p.Day >= next {
			next = p.Day + 1
		}
	}
	return next
}
