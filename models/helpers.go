package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ObjectID converts a string to a MongoDB ObjectID without the need of error checking
// (placed here so the database package is not required by the controllers package)
func ObjectID(ID string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// GeoPoint is the GeoJSON representation of a location
// https://docs.mongodb.com/manual/reference/geojson/
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // longitude first (GeoJSON order)
}

// NewGeoPoint builds a GeoJSON point from the client's lat/lng pair
func NewGeoPoint(latitude float64, longitude float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}
