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

// MongoVehicleTypeCollection implements VehicleTypeCollection.
type MongoVehicleTypeCollection struct {
	Collection *mongo.Collection
}

func (c *MongoVehicleTypeCollection) InsertVehicleType(ctx context.Context, vt *models.VehicleType) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	now := time.Now().UTC()
	vt.ID = primitive.NewObjectID()
	vt.CreatedAt = now
	vt.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, vt)
	return translate(err)
}

func (c *MongoVehicleTypeCollection) FindVehicleTypeByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error) {
	return findOne[models.VehicleType](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoVehicleTypeCollection) FindVehicleTypes(ctx context.Context) ([]models.VehicleType, error) {
	return findAll[models.VehicleType](ctx, c.Collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// UpdateVehicleType replaces the stored type. Bills already generated keep
// the rates they were computed with.
func (c *MongoVehicleTypeCollection) UpdateVehicleType(ctx context.Context, vt *models.VehicleType) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	vt.UpdatedAt = time.Now().UTC()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": vt.ID}, vt)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoVehicleCollection implements VehicleCollection.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now().UTC()
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return translate(err)
}

func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	return findOne[models.Vehicle](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return findAll[models.Vehicle](ctx, c.Collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "registration_number", Value: 1}}))
}

// MongoDriverCollection implements DriverCollection.
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver *models.Driver) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now().UTC()
	_, err := c.Collection.InsertOne(ctx, driver)
	return translate(err)
}

func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	return findOne[models.Driver](ctx, c.Collection, bson.M{"_id": id})
}

func (c *MongoDriverCollection) FindDrivers(ctx context.Context) ([]models.Driver, error) {
	return findAll[models.Driver](ctx, c.Collection, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}
