package types

type HotelDestination struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DestType     string `json:"destType,omitempty"`
}

type HotelRoom struct {
	Description string   `json:"description"`
	Photos      []string `json:"photos"`
}

type HotelDetails struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	City         string      `json:"city"`
	Facilities   []string    `json:"facilities"`
	Rooms        []HotelRoom `json:"rooms"`
	NightlyPrice *float64    `json:"nightlyPrice,omitempty"`
	Currency     string      `json:"currency,omitempty"`
}

// HotelSummary is the condensed view offered as an accommodation choice.
// ManualEntry is set when the provider had nothing and the user should type
// the accommodation in.
type HotelSummary struct {
	Found        bool     `json:"found"`
	ManualEntry  bool     `json:"manualEntry"`
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address,omitempty"`
	Facilities   []string `json:"facilities,omitempty"`
	RoomPhoto    string   `json:"roomPhoto,omitempty"`
	RoomDetails  string   `json:"roomDetails,omitempty"`
	NightlyPrice string   `json:"nightlyPrice,omitempty"`
	Notice       string   `json:"notice,omitempty"`
}

type HotelQuery struct {
	ID       string
	CheckIn  Date
	CheckOut Date
	Adults   int
}

// ProductSort is the ordering accepted by the product search provider.
type ProductSort string

const (
	SortPopular   ProductSort = "pop"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

func (s ProductSort) Valid() bool {
	return s == SortPopular || s == SortPriceAsc || s == SortPriceDesc
}

type Product struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      string   `json:"price"`
	ImageURL   string   `json:"imageUrl"`
	ShopName   string   `json:"shopName"`
	Rating     *float64 `json:"rating,omitempty"`
	Reviews    int      `json:"reviews,omitempty"`
	ProductURL string   `json:"productUrl"`
}
