// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/models"
)

// HTTPGeocoder reverse-geocodes against a Nominatim-compatible
// endpoint. The terrain classifier applies its own timeout on top of
// the client timeout and absorbs every failure, so this client stays
// deliberately thin: one request, no retries.
type HTTPGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGeocoder creates a geocoder for cfg.URL. Returns nil when the
// URL is empty, which disables the semantic terrain estimator.
func NewHTTPGeocoder(cfg config.GeocoderConfig) *HTTPGeocoder {
	if cfg.URL == "" {
		return nil
	}
	return &HTTPGeocoder{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// nominatimResponse is the subset of the reverse-geocode payload the
// terrain classifier consumes.
type nominatimResponse struct {
	Address struct {
		Road         string `json:"road"`
		Footway      string `json:"footway"`
		Leisure      string `json:"leisure"`
		Natural      string `json:"natural"`
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Water        string `json:"water"`
		Ocean        string `json:"ocean"`
		Country      string `json:"country"`
		NationalPark string `json:"national_park"`
	} `json:"address"`
}

// Lookup fetches place attributes for one coordinate.
func (g *HTTPGeocoder) Lookup(ctx context.Context, coord geo.Coordinate) (*models.PlaceAttributes, error) {
	reqURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%s&lon=%s&zoom=17",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%.6f", coord.Latitude)),
		url.QueryEscape(fmt.Sprintf("%.6f", coord.Longitude)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	return mapNominatim(payload), nil
}

// mapNominatim folds the address fields into the classifier's
// PlaceAttributes shape. Road and footway both land in Thoroughfare;
// leisure, natural, and national-park features become the area of
// interest.
func mapNominatim(payload nominatimResponse) *models.PlaceAttributes {
	addr := payload.Address

	place := &models.PlaceAttributes{
		Thoroughfare: addr.Road,
		InlandWater:  addr.Water,
		Ocean:        addr.Ocean,
		Country:      addr.Country,
	}
	if place.Thoroughfare == "" {
		place.Thoroughfare = addr.Footway
	}

	switch {
	case addr.NationalPark != "":
		place.AreaOfInterest = addr.NationalPark
	case addr.Leisure != "":
		place.AreaOfInterest = addr.Leisure
	case addr.Natural != "":
		place.AreaOfInterest = addr.Natural
	}

	switch {
	case addr.City != "":
		place.Locality = addr.City
	case addr.Town != "":
		place.Locality = addr.Town
	case addr.Village != "":
		place.Locality = addr.Village
	}
	return place
}
