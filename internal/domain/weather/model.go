package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ParseCoordinates parses "lat,lon".
func ParseCoordinates(raw string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return Coordinates{}, errors.New(`coordinates must be formatted as "latitude,longitude"`)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude: %w", err)
	}
	c := Coordinates{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Validate checks the pair lies on the globe.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// String renders the "lat,lon" form used in URLs.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// cacheKey buckets nearby positions (about 1km) together.
func (c Coordinates) cacheKey() string {
	return fmt.Sprintf("%.2f,%.2f", c.Latitude, c.Longitude)
}

// Report is the current conditions at a location, shaped like the upstream payload.
type Report struct {
	Location  *Location `json:"location,omitempty"`
	Current   Current   `json:"current"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Location names the place the report was resolved to.
type Location struct {
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// Current holds the observed values.
type Current struct {
	TempC      float64   `json:"temp_c"`
	FeelsLikeC float64   `json:"feelslike_c"`
	WindKph    float64   `json:"wind_kph"`
	Humidity   int       `json:"humidity"`
	Condition  Condition `json:"condition"`
}

// Condition is the human readable summary plus icon.
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code,omitempty"`
}

// Config wires runtime knobs for the weather domain.
type Config struct {
	CacheTTL time.Duration
}
