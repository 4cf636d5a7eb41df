package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fuel type values accepted by the catalog.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Electric"
	FuelHybrid   = "Hybrid"
)

// Transmission values.
const (
	TransmissionAutomatic = "Automatic"
	TransmissionManual    = "Manual"
)

type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Brand        string             `bson:"brand" json:"brand" validate:"required"`
	ModelYear    int                `bson:"model_year" json:"modelYear"`
	FuelType     string             `bson:"fuel_type" json:"fuelType" validate:"required,oneof=Petrol Diesel Electric Hybrid"`
	Transmission string             `bson:"transmission" json:"transmission" validate:"required,oneof=Automatic Manual"`
	PricePerDay  float64            `bson:"price_per_day" json:"pricePerDay" validate:"required,gt=0"`
	Location     string             `bson:"location" json:"location"`
	Images       []string           `bson:"images" json:"images"`
	Available    bool               `bson:"available" json:"available"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VehicleRating is the aggregated review summary for a vehicle. Average is
// rounded to one decimal place; both fields are zero when no reviews exist.
type VehicleRating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
