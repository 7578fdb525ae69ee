package api

import "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`                           // Indicates if the operation was successful.
	Message string `json:"message,omitempty" example:"Operation successful"` // Optional success message.
	Error   string `json:"error,omitempty" example:"Resource not found"`     // Optional error message.
}

// AddStopRequest appends a stop to a day. All fields may be blank.
type AddStopRequest struct {
	Name        string `json:"name" example:"Wat Nong Wang"`
	TimeStart   string `json:"timeStart" example:"09:00"`
	TimeEnd     string `json:"timeEnd" example:"10:30"`
	Description string `json:"description" example:"Nine-storey pagoda"`
}

// UpdateStopFieldRequest replaces one field of one stop.
type UpdateStopFieldRequest struct {
	Field string `json:"field" example:"timeEnd"` // One of name, timeStart, timeEnd, description.
	Value string `json:"value" example:"11:00"`
}

// ReplaceStopsRequest replaces the whole ordered stop list.
type ReplaceStopsRequest struct {
	Stops []types.Stop `json:"stops"`
}

// TransportationRequest is the transport tab of the day editor.
type TransportationRequest struct {
	StartLocation       string `json:"startLocation" example:"Khon Kaen Bus Terminal 3"`
	EndLocationOverride string `json:"endLocationOverride,omitempty"` // Blank keeps the last-stop rule.
	Transportation      string `json:"transportation" example:"Rental car"`
}

type AccommodationRequest struct {
	Accommodation string `json:"accommodation" example:"Pullman Khon Kaen Raja Orchid"`
}

type ActivitiesRequest struct {
	Activities []types.Activity `json:"activities"`
}

type StartLocationRequest struct {
	Location string `json:"location" example:"Central Plaza Khon Kaen"`
}

// CoordinatesRequest carries the user's current position.
type CoordinatesRequest struct {
	Lat float64 `json:"lat" example:"16.4419"`
	Lng float64 `json:"lng" example:"102.8391"`
}
