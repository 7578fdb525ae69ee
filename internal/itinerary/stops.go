package itinerary

import (
	"fmt"
	"slices"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// StopField names an editable field of a Stop.
type StopField string

const (
	FieldName        StopField = "name"
	FieldTimeStart   StopField = "timeStart"
	FieldTimeEnd     StopField = "timeEnd"
	FieldDescription StopField = "description"
)

// AddStop appends stop to the end of the list. Blank stops are allowed.
func AddStop(stops []types.Stop, stop types.Stop) []types.Stop {
	out := make([]types.Stop, 0, len(stops)+1)
	out = append(out, stops...)
	return append(out, stop)
}

// RemoveStop removes the stop at index, leaving the others in order.
func RemoveStop(stops []types.Stop, index int) ([]types.Stop, error) {
	if index < 0 || index >= len(stops) {
		return nil, &types.ValidationError{Problems: []string{
			fmt.Sprintf("stop index %d out of range (0..%d)", index, len(stops)-1),
		}}
	}
	return slices.Delete(slices.Clone(stops), index, index+1), nil
}

// UpdateStopField returns a copy of stops with one field of one stop replaced.
func UpdateStopField(stops []types.Stop, index int, field StopField, value string) ([]types.Stop, error) {
	if index < 0 || index >= len(stops) {
		return nil, &types.ValidationError{Problems: []string{
			fmt.Sprintf("stop index %d out of range (0..%d)", index, len(stops)-1),
		}}
	}
	out := slices.Clone(stops)
	s := out[index]
	switch field {
	case FieldName:
		s.Name = value
	case FieldTimeStart, FieldTimeEnd:
		if !ValidClock(value) {
			return nil, &types.ValidationError{Problems: []string{
				fmt.Sprintf("%s must be HH:MM, got %q", field, value),
			}}
		}
		if field == FieldTimeStart {
			s.TimeStart = value
		} else {
			s.TimeEnd = value
		}
	case FieldDescription:
		s.Description = value
	default:
		return nil, &types.ValidationError{Problems: []string{fmt.Sprintf("unknown stop field %q", field)}}
	}
	out[index] = s
	return out, nil
}

// StopDurations returns ComputeDuration for every stop, in order.
func StopDurations(stops []types.Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = ComputeDuration(s.TimeStart, s.TimeEnd)
	}
	return out
}
