package db

import (
	"context"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripsheetCollection implements TripsheetCollection.
type MongoTripsheetCollection struct {
	Collection *mongo.Collection
}

// InsertTripsheet assigns an ID and stores ts. A second tripsheet for the
// same vehicle and month fails with ErrDuplicate.
func (c *MongoTripsheetCollection) InsertTripsheet(ctx context.Context, ts *models.Tripsheet) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	ts.ID = primitive.NewObjectID()
	_, err := c.Collection.InsertOne(ctx, ts)
	return translate(err)
}

func (c *MongoTripsheetCollection) FindTripsheetByID(ctx context.Context, id primitive.ObjectID) (*models.Tripsheet, error) {
	return findOne[models.Tripsheet](ctx, c.Collection, bson.M{"_id": id})
}

// FindTripsheets lists tripsheets newest period first. Entries are included.
func (c *MongoTripsheetCollection) FindTripsheets(ctx context.Context, filter TripsheetFilter) ([]models.Tripsheet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}, {Key: "created_at", Value: 1}})
	return findAll[models.Tripsheet](ctx, c.Collection, filter.bson(), opts)
}

// ReplaceTripsheet writes the whole document back, entries and summary
// included.
func (c *MongoTripsheetCollection) ReplaceTripsheet(ctx context.Context, ts *models.Tripsheet) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": ts.ID}, ts)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
