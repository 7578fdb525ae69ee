package types

// WeatherSnapshot is one day of forecast. Temperature is in degrees Celsius
// and WindSpeed in km/h.
type WeatherSnapshot struct {
	Date        Date    `json:"date"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	Description string  `json:"description,omitempty"`
	Humidity    int     `json:"humidity"`
	WindSpeed   int     `json:"windSpeed"`
	Advisory    string  `json:"advisory"`
	Icon        string  `json:"icon,omitempty"`
	FeelsLike   float64 `json:"feelsLike,omitempty"`
}

// ForecastPoint is a provider reading before unit normalisation.
type ForecastPoint struct {
	Unix        int64
	TempKelvin  float64
	FeelsKelvin float64
	Humidity    int
	WindMS      float64
	Main        string
	Description string
	Icon        string
}

// ForecastResult is what the weather annotator attaches to a collection.
type ForecastResult struct {
	Entries []WeatherSnapshot `json:"entries"`
	Status  ForecastStatus    `json:"status"`
}
