package geocoder

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlusCode(t *testing.T) {
	assert.True(t, IsPlusCode("X7Q6+29"))
	assert.True(t, IsPlusCode("8FVC9G8F+6X"))
	assert.True(t, IsPlusCode(" x7q6+29 "))

	assert.False(t, IsPlusCode(""))
	assert.False(t, IsPlusCode("12 Main Street"))
	assert.False(t, IsPlusCode("X7Q6"))
	assert.False(t, IsPlusCode("AAAA+AA")) // A is not in the Plus Code alphabet
}

func geocoderStub(t *testing.T, answers map[string]string) (*Client, *[]string) {
	t.Helper()
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		w.Header().Set("Content-Type", "application/json")
		if body, ok := answers[q]; ok {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)
	return NewClient(server.URL), &queries
}

func TestGeocodePlusCodeTierWinsFirst(t *testing.T) {
	client, queries := geocoderStub(t, map[string]string{
		"X7Q6+29, Lyon, France": `[{"lat":"45.76","lon":"4.83"}]`,
	})

	coords, err := client.Geocode(Address{
		PlusCode: "X7Q6+29",
		Street:   "12 Rue de la République",
		City:     "Lyon",
		Country:  "France",
	})
	require.NoError(t, err)
	require.NotNil(t, coords)

	assert.InDelta(t, 45.76, coords.Latitude, 0.001)
	assert.InDelta(t, 4.83, coords.Longitude, 0.001)
	// The Plus Code tier answered, so no further lookups happened.
	assert.Equal(t, []string{"X7Q6+29, Lyon, France"}, *queries)
}

func TestGeocodeFallsBackToCity(t *testing.T) {
	client, queries := geocoderStub(t, map[string]string{
		"Lyon, France": `[{"lat":"45.75","lon":"4.85"}]`,
	})

	coords, err := client.Geocode(Address{
		Street:  "nonexistent alley 999",
		City:    "Lyon",
		Country: "France",
	})
	require.NoError(t, err)
	require.NotNil(t, coords)

	assert.InDelta(t, 45.75, coords.Latitude, 0.001)
	assert.Equal(t, []string{"nonexistent alley 999, Lyon, France", "Lyon, France"}, *queries)
}

func TestGeocodeAllTiersMissMeansUnknown(t *testing.T) {
	client, queries := geocoderStub(t, nil)

	coords, err := client.Geocode(Address{
		Street:  "nowhere",
		City:    "Atlantis",
		Country: "Ocean",
	})

	// Unknown coordinates are not an error.
	require.NoError(t, err)
	assert.Nil(t, coords)
	assert.Len(t, *queries, 2)
}

func TestGeocodeMalformedPlusCodeSkipsTier(t *testing.T) {
	client, queries := geocoderStub(t, map[string]string{
		"Lyon, France": `[{"lat":"45.75","lon":"4.85"}]`,
	})

	coords, err := client.Geocode(Address{
		PlusCode: "NOT+APLUSCODE",
		City:     "Lyon",
		Country:  "France",
	})
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, []string{"Lyon, France"}, *queries)
}

func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.URL).Geocode(Address{City: "Lyon", Country: "France"})
	assert.Error(t, err)
}
