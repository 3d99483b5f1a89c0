package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBillCollection implements BillCollection.
type MongoBillCollection struct {
	Collection *mongo.Collection
}

// InsertBill stores bill under a new ID. The unique index on tripsheet_id
// turns a concurrent second generation into ErrDuplicate.
func (c *MongoBillCollection) InsertBill(ctx context.Context, bill *models.Bill) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	bill.ID = primitive.NewObjectID()
	_, err := c.Collection.InsertOne(ctx, bill)
	return translate(err)
}

func (c *MongoBillCollection) FindBillByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	return findOne[models.Bill](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoBillCollection) FindBillByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.Bill, error) {
	return findOne[models.Bill](ctx, c.Collection, bson.M{"tripsheet_id": tripsheetID})
}

func (c *MongoBillCollection) UpdateBillCalculation(ctx context.Context, id primitive.ObjectID, calc models.BillingCalculation, notes string, now time.Time) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"calculation":      calc,
			"adjustment_notes": notes,
			"updated_at":       now,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
