package db

import (
	"context"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSalaryCollection implements SalaryCollection.
type MongoSalaryCollection struct {
	Collection *mongo.Collection
}

// InsertSalary stores salary. The caller sets the ID so that advances can be
// linked to it inside the same transaction.
func (c *MongoSalaryCollection) InsertSalary(ctx context.Context, salary *models.DriverSalary) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if salary.ID.IsZero() {
		salary.ID = primitive.NewObjectID()
	}
	_, err := c.Collection.InsertOne(ctx, salary)
	return translate(err)
}

func (c *MongoSalaryCollection) FindSalaryByID(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error) {
	return findOne[models.DriverSalary](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoSalaryCollection) FindSalaryByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.DriverSalary, error) {
	return findOne[models.DriverSalary](ctx, c.Collection, bson.M{"tripsheet_id": tripsheetID})
}
