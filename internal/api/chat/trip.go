package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	generativeAI "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// CreateTripSentinel is appended by the model when the user confirmed a trip.
const CreateTripSentinel = "[CREATE_TRIP]"

const tripPromptTemplate = `จากบทสนทนาด้านล่าง สร้างแผนการท่องเที่ยวจังหวัดขอนแก่นเป็น JSON object เพียงอย่างเดียว ไม่ต้องมีคำอธิบาย
วันนี้คือวันที่ %s หากผู้ใช้ไม่ได้ระบุวันเดินทาง ให้เริ่มทริปวันนี้

รูปแบบ:
{
  "name": "ชื่อทริป",
  "category": "family | couple | friends | solo | student",
  "startDate": "YYYY-MM-DD",
  "endDate": "YYYY-MM-DD",
  "budget": 0,
  "plans": [
    {
      "day": 1,
      "startLocation": "จุดเริ่มต้น (ห้ามเป็นที่พัก)",
      "endLocation": "จุดสุดท้าย",
      "transportation": "การเดินทาง",
      "accommodation": "ที่พัก",
      "stops": [{"name": "", "timeStart": "HH:MM", "timeEnd": "HH:MM", "description": ""}],
      "activities": [{"title": "", "date": "YYYY-MM-DD", "timeStart": "HH:MM", "timeEnd": "HH:MM", "description": "", "location": "", "cost": 0, "type": ""}]
    }
  ]
}

บทสนทนา:
%s`

// TripPrompt builds the one-shot generation prompt from a transcript.
func TripPrompt(today types.Date, transcript string) string {
	return fmt.Sprintf(tripPromptTemplate, today.String(), transcript)
}

// Transcript renders the visible history as "role: text" lines.
func Transcript(messages []types.ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

var thaiCategories = map[string]types.Category{
	"ครอบครัว": types.CategoryFamily,
	"คู่รัก":   types.CategoryCouple,
	"เพื่อน":   types.CategoryFriends,
	"เดี่ยว":   types.CategorySolo,
	"คนเดียว":  types.CategorySolo,
	"นักเรียน": types.CategoryStudent,
	"นักศึกษา": types.CategoryStudent,
}

// CategoryFrom maps an English or Thai category label. Unknown labels
// default to family.
func CategoryFrom(label string) types.Category {
	label = strings.TrimSpace(label)
	if c := types.Category(strings.ToLower(label)); c.Valid() {
		return c
	}
	if c, ok := thaiCategories[label]; ok {
		return c
	}
	return types.CategoryFamily
}

// ParseTripPlan turns a model answer into a trip. Anything that is not a
// well-formed itinerary is a types.ErrParseFailure.
func ParseTripPlan(response string) (*types.GeneratedTrip, error) {
	var trip types.GeneratedTrip
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(response)), &trip); err != nil {
		return nil, fmt.Errorf("%w: trip plan: %v", types.ErrParseFailure, err)
	}

	var problems []string
	trip.Name = strings.TrimSpace(trip.Name)
	if trip.Name == "" {
		problems = append(problems, "name is missing")
	}
	start, err := types.ParseDate(trip.StartDate)
	if err != nil || start.IsZero() {
		problems = append(problems, "startDate is missing or malformed")
	}
	end, err := types.ParseDate(trip.EndDate)
	if err != nil || end.IsZero() {
		problems = append(problems, "endDate is missing or malformed")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		problems = append(problems, "endDate is before startDate")
	}
	if trip.Budget < 0 {
		problems = append(problems, "budget is negative")
	}
	if len(trip.Plans) == 0 {
		problems = append(problems, "no day plans")
	}
	for i, p := range trip.Plans {
		for j, st := range p.Stops {
			if !itinerary.ValidClock(st.TimeStart) || !itinerary.ValidClock(st.TimeEnd) {
				problems = append(problems, fmt.Sprintf("day %d stop %d has an invalid time", i+1, j))
			}
		}
		for j, a := range p.Activities {
			if !itinerary.ValidClock(a.TimeStart) || !itinerary.ValidClock(a.TimeEnd) {
				problems = append(problems, fmt.Sprintf("day %d activity %d has an invalid time", i+1, j))
			}
			if a.Cost < 0 {
				problems = append(problems, fmt.Sprintf("day %d activity %d has a negative cost", i+1, j))
			}
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: trip plan: %s", types.ErrParseFailure, strings.Join(problems, "; "))
	}

	for i := range trip.Plans {
		trip.Plans[i].Day = i + 1
		if trip.Plans[i].Stops == nil {
			trip.Plans[i].Stops = []types.Stop{}
		}
		if trip.Plans[i].Activities == nil {
			trip.Plans[i].Activities = []types.Activity{}
		}
	}
	return &trip, nil
}

// SampleTrip is the three-day family itinerary used when generation fails.
func SampleTrip(today types.Date) *types.GeneratedTrip {
	day2 := today.AddDays(1)
	return &types.GeneratedTrip{
		Name:      "ทริปครอบครัวขอนแก่น 3 วัน",
		Category:  string(types.CategoryFamily),
		StartDate: today.String(),
		EndDate:   today.AddDays(2).String(),
		Budget:    9000,
		Plans: []types.Plan{
			{
				Day:            1,
				StartLocation:  "สถานีขนส่งผู้โดยสารขอนแก่น",
				EndLocation:    "ตลาดทุ่งสร้าง",
				Transportation: "เดินเท้า/รถจักรยานยนต์",
				Accommodation:  "โรงแรมในตัวเมืองขอนแก่น (1,200 บาท/คืน)",
				Stops: []types.Stop{
					{Name: "หอศิลปวัฒนธรรมแห่งจังหวัดขอนแก่น", TimeStart: "09:00", TimeEnd: "10:30", Description: "ชมนิทรรศการศิลปะพื้นบ้าน"},
					{Name: "ตลาดทุ่งสร้าง", TimeStart: "11:00", TimeEnd: "12:30", Description: "ชิมอาหารพื้นบ้านและเลือกซื้อของฝาก"},
				},
				Activities: []types.Activity{{
					Title:       "เยี่ยมชมสวนสาธารณะศรีมหาโพธิ",
					Date:        today,
					TimeStart:   "08:00",
					TimeEnd:     "10:00",
					Description: "เดินเล่นรับลมเย็น ชมพระพุทธรูปใหญ่และทะเลสาบ",
					Location:    "สวนสาธารณะศรีมหาโพธิ",
					Cost:        0,
					Type:        "ธรรมชาติ",
				}},
			},
			{
				Day:            2,
				StartLocation:  "ตลาดทุ่งสร้าง",
				EndLocation:    "หมู่บ้านโฮมสเตย์",
				Transportation: "รถยนต์ส่วนตัว",
				Accommodation:  "โรงแรมในตัวเมืองขอนแก่น (1,200 บาท/คืน)",
				Stops: []types.Stop{
					{Name: "วัดพระธาตุขามแก่น", TimeStart: "09:00", TimeEnd: "11:00", Description: "สักการะและชมสถาปัตยกรรม"},
					{Name: "หมู่บ้านโฮมสเตย์", TimeStart: "13:00", TimeEnd: "16:00", Description: "สัมผัสวิถีชีวิตชุมชนท้องถิ่น"},
				},
				Activities: []types.Activity{{
					Title:       "ล่องแก่งกะเหรี่ยง",
					Date:        day2,
					TimeStart:   "14:00",
					TimeEnd:     "16:00",
					Description: "ล่องแก่งชมธรรมชาติและวัฒนธรรมกะเหรี่ยง",
					Location:    "แก่งกะเหรี่ยง",
					Cost:        500,
					Type:        "กิจกรรมผจญภัย",
				}},
			},
		},
	}
}
