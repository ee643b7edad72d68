package geocoder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Address is the raw location data an optician supplies.
type Address struct {
	PlusCode string
	Street   string
	City     string
	Country  string
}

// Plus Codes use a reduced alphabet and a mandatory '+' separator,
// e.g. "X7Q6+29" or "8FVC9G8F+6X".
var plusCodeRe = regexp.MustCompile(`^[23456789CFGHJMPQRVWX]{2,8}\+[23456789CFGHJMPQRVWX]{2,3}$`)

// IsPlusCode reports whether s looks like a Plus Code.
func IsPlusCode(s string) bool {
	return plusCodeRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// Client resolves addresses against a Nominatim-style search endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode resolves an address with three fallback tiers: Plus Code
// first when present, then the full street address, then the city
// alone. A (nil, nil) return means every tier missed - coordinates are
// simply unknown, not an error.
func (c *Client) Geocode(addr Address) (*Coordinates, error) {
	queries := c.queryTiers(addr)
	for _, q := range queries {
		coords, err := c.lookup(q)
		if err != nil {
			return nil, err
		}
		if coords != nil {
			return coords, nil
		}
	}
	return nil, nil
}

func (c *Client) queryTiers(addr Address) []string {
	var queries []string
	if addr.PlusCode != "" && IsPlusCode(addr.PlusCode) {
		queries = append(queries, joinParts(addr.PlusCode, addr.City, addr.Country))
	}
	if addr.Street != "" {
		queries = append(queries, joinParts(addr.Street, addr.City, addr.Country))
	}
	if addr.City != "" {
		queries = append(queries, joinParts(addr.City, addr.Country))
	}
	return queries
}

func joinParts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) lookup(query string) (*Coordinates, error) {
	u := fmt.Sprintf("%s?format=json&limit=1&q=%s", c.BaseURL, url.QueryEscape(query))
	resp, err := c.HTTPClient.Get(u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, err
	}
	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}
