package repository

import (
	"context"
	"errors"
	"time"

	"rentwheels-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

func (r *VehicleRepository) Create(vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	vehicle.ID = result.InsertedID.(primitive.ObjectID)
	return vehicle, nil
}

func (r *VehicleRepository) FindByID(id string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	var vehicle models.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("vehicle not found")
		}
		return nil, err
	}

	return &vehicle, nil
}

func (r *VehicleRepository) FindAll() ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Newest listings first
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) FindAvailable() ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"available": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) FindByBrand(brand string) ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"brand": brand})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) FindByFuelType(fuelType string) ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"fuel_type": fuelType})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) FindByPriceBelow(maxPricePerDay float64) ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "price_per_day", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"price_per_day": bson.M{"$lte": maxPricePerDay}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) FindByIDs(ids []primitive.ObjectID) ([]*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeVehicles(ctx, cursor)
}

func (r *VehicleRepository) Update(id string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid vehicle ID")
	}

	vehicle.UpdatedAt = time.Now()

	update := bson.M{
		"$set": vehicle,
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updatedVehicle models.Vehicle
	if err := result.Decode(&updatedVehicle); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("vehicle not found")
		}
		return nil, err
	}

	return &updatedVehicle, nil
}

func (r *VehicleRepository) SetAvailability(id string, available bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	update := bson.M{
		"$set": bson.M{
			"available":  available,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return errors.New("vehicle not found")
	}

	return nil
}

func (r *VehicleRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid vehicle ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("vehicle not found")
	}

	return nil
}

func (r *VehicleRepository) Count() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	return count, err
}

// CreateIndexes creates necessary indexes for the vehicles collection
func (r *VehicleRepository) CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "available", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "brand", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "fuel_type", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "price_per_day", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeVehicles(ctx context.Context, cursor *mongo.Cursor) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	for cursor.Next(ctx) {
		var vehicle models.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, nil
}
