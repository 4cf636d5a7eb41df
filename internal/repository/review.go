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

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
	}
}

// Upsert inserts or overwrites the review for (vehicle, user). The unique
// compound index on those fields makes concurrent upserts safe.
func (r *ReviewRepository) Upsert(review *models.Review) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"vehicle_id": review.VehicleID,
		"user_id":    review.UserID,
	}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"vehicle_id": review.VehicleID,
			"user_id":    review.UserID,
			"created_at": now,
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var stored models.Review
	if err := result.Decode(&stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *ReviewRepository) FindByID(id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid review ID")
	}

	var review models.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("review not found")
		}
		return nil, err
	}

	return &review, nil
}

func (r *ReviewRepository) FindByVehicle(vehicleID primitive.ObjectID) ([]*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

func (r *ReviewRepository) FindAll() ([]*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

// AggregateRating computes the mean rating and count for a vehicle.
func (r *ReviewRepository) AggregateRating(vehicleID primitive.ObjectID) (float64, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{
			"$match": bson.M{"vehicle_id": vehicleID},
		},
		{
			"$group": bson.M{
				"_id":     nil,
				"average": bson.M{"$avg": "$rating"},
				"count":   bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, err
		}
	}

	return result.Average, result.Count, nil
}

func (r *ReviewRepository) SetAdminReply(id string, reply string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid review ID")
	}

	update := bson.M{
		"$set": bson.M{
			"admin_reply": reply,
			"updated_at":  time.Now(),
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Review
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("review not found")
		}
		return nil, err
	}

	return &updated, nil
}

func (r *ReviewRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid review ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("review not found")
	}

	return nil
}

// CreateIndexes creates necessary indexes for the reviews collection. The
// unique (vehicle_id, user_id) index enforces one review per user per
// vehicle at the storage layer.
func (r *ReviewRepository) CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "vehicle_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "vehicle_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
