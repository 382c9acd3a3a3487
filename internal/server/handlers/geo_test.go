package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallens/internal/domain/geo"
	"locallens/internal/logging"
)

type fakeGeocoder struct {
	places []geo.LocationContext
	place  *geo.LocationContext
	err    error
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) ([]geo.LocationContext, error) {
	return f.places, f.err
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) (*geo.LocationContext, error) {
	return f.place, f.err
}

func TestGeoHandler_Search(t *testing.T) {
	h := NewGeoHandler(&fakeGeocoder{places: []geo.LocationContext{{City: "Baltimore", State: "Maryland"}}}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/geo/search?q=balt", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var places []geo.LocationContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &places))
	require.Len(t, places, 1)
	assert.Equal(t, "Baltimore", places[0].City)
}

func TestGeoHandler_SearchDegradesToEmpty(t *testing.T) {
	h := NewGeoHandler(&fakeGeocoder{err: errors.New("timeout")}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/geo/search?q=baltimore", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGeoHandler_Reverse(t *testing.T) {
	h := NewGeoHandler(&fakeGeocoder{place: &geo.LocationContext{Latitude: 39.29, Longitude: -76.61, City: "Baltimore"}}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Reverse(rec, httptest.NewRequest(http.MethodGet, "/api/v1/geo/reverse?lat=39.29&lon=-76.61", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var place geo.LocationContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &place))
	assert.Equal(t, "Baltimore", place.City)
}

func TestGeoHandler_ReverseDegradesToCoordinates(t *testing.T) {
	h := NewGeoHandler(&fakeGeocoder{err: errors.New("503")}, logging.Discard())

	rec := httptest.NewRecorder()
	h.Reverse(rec, httptest.NewRequest(http.MethodGet, "/api/v1/geo/reverse?lat=39.29&lon=-76.61", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var place geo.LocationContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &place))
	assert.Equal(t, geo.LocationContext{Latitude: 39.29, Longitude: -76.61}, place)
}

func TestGeoHandler_ReverseValidation(t *testing.T) {
	h := NewGeoHandler(&fakeGeocoder{}, logging.Discard())

	for _, query := range []string{"", "lat=1", "lat=x&lon=1", "lat=1&lon=y"} {
		rec := httptest.NewRecorder()
		h.Reverse(rec, httptest.NewRequest(http.MethodGet, "/api/v1/geo/reverse?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}
