package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAdvanceCollection implements AdvanceCollection.
type MongoAdvanceCollection struct {
	Collection *mongo.Collection
}

func (c *MongoAdvanceCollection) InsertAdvance(ctx context.Context, adv *models.AdvanceSalary) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	adv.ID = primitive.NewObjectID()
	_, err := c.Collection.InsertOne(ctx, adv)
	return translate(err)
}

func (c *MongoAdvanceCollection) FindAdvanceByID(ctx context.Context, id primitive.ObjectID) (*models.AdvanceSalary, error) {
	return findOne[models.AdvanceSalary](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoAdvanceCollection) FindAdvances(ctx context.Context, filter AdvanceFilter) ([]models.AdvanceSalary, error) {
	return findAll[models.AdvanceSalary](ctx, c.Collection, filter.bson(), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (c *MongoAdvanceCollection) FindDeductibleAdvances(ctx context.Context, driverID primitive.ObjectID, month, year int) ([]models.AdvanceSalary, error) {
	return findAll[models.AdvanceSalary](ctx, c.Collection, deductibleFilter(driverID, month, year), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (c *MongoAdvanceCollection) MarkDeducted(ctx context.Context, ids []primitive.ObjectID, salaryID primitive.ObjectID, now time.Time) (int64, error) {
	if c.Collection == nil {
		return 0, ErrNilCollection
	}
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := c.Collection.UpdateMany(ctx,
		bson.M{
			"_id":                     bson.M{"$in": ids},
			"status":                  models.AdvancePaid,
			"deducted_from_salary_id": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"status":                  models.AdvanceDeducted,
			"deducted_from_salary_id": salaryID,
			"deducted_at":             now,
			"updated_at":              now,
		}},
	)
	if err != nil {
		return 0, translate(err)
	}
	return result.ModifiedCount, nil
}

func (c *MongoAdvanceCollection) ReplaceAdvance(ctx context.Context, adv *models.AdvanceSalary) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": adv.ID}, adv)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
