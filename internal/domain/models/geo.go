package models

import (
	"encoding/json"

	"greenbus/backend/internal/domain"
)

// Point is the single strict coordinate type used past the HTTP boundary.
// Capture devices are loose about field names (lat/latitude, lng/lon/
// longitude), so decoding normalizes all spellings here and nothing
// downstream ever sees the raw bag.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type loosePoint struct {
	Lat       *float64 `json:"lat"`
	Latitude  *float64 `json:"latitude"`
	Lng       *float64 `json:"lng"`
	Lon       *float64 `json:"lon"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw loosePoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.ValidationError{Field: "location", Msg: "malformed coordinates", Err: err}
	}

	lat := firstOf(raw.Lat, raw.Latitude)
	lng := firstOf(raw.Lng, raw.Lon, raw.Longitude)
	if lat == nil || lng == nil {
		return domain.ValidationError{Field: "location", Msg: "latitude and longitude are required"}
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return domain.ValidationError{Field: "location", Msg: "coordinates out of range"}
	}

	p.Lat = *lat
	p.Lng = *lng
	return nil
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
