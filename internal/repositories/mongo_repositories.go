package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tienda/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the Mongo stores.
const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	ProfilesCollection = "profiles"
)

// MongoProductRepository stores products as documents in the products collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(ProductsCollection)}
}

// GetAll retrieves all products.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

// FindByIDs retrieves the products whose _id is in ids.
func (r *MongoProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, idsFilter(ids))
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its _id.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": idMatch(id)}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update sets the editable fields of an existing product.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	update := bson.M{"$set": productSet(product, time.Now().UTC())}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": idMatch(product.ID)}, update, opts).Decode(product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes a product document. A missing document is not an error.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": idMatch(id)}); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// MongoOrderRepository stores orders with their line items embedded.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(OrdersCollection)}
}

// GetAll retrieves all orders, newest first.
func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its _id.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": idMatch(id)}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts a new order document.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// MongoProfileRepository stores one profile document per identity subject.
type MongoProfileRepository struct {
	coll *mongo.Collection
}

// NewMongoProfileRepository creates a new instance of MongoProfileRepository.
func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(ProfilesCollection)}
}

// EnsureIndexes creates the unique index on the subject field.
func (r *MongoProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sub", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create profile subject index: %w", err)
	}
	return nil
}

// GetBySubject retrieves the profile owned by subject.
func (r *MongoProfileRepository) GetBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.coll.FindOne(ctx, bson.M{"sub": subject}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("profile for subject %s: %w", subject, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for subject %s: %w", subject, err)
	}
	return &profile, nil
}

// Upsert creates or updates the profile document for profile.Subject.
func (r *MongoProfileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	now := time.Now().UTC()
	update := profileUpsert(profile, uuid.New().String(), now)
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Profile
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"sub": profile.Subject}, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to upsert profile for subject %s: %w", profile.Subject, err)
	}
	return &stored, nil
}

// idMatch matches an _id stored as a string or, when id is a hex ObjectId,
// as an ObjectId. Documents written by the earlier mongoose storefront use
// ObjectIds.
func idMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{id, oid}}
	}
	return id
}

func idsFilter(ids []string) bson.M {
	values := make(bson.A, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			values = append(values, oid)
		}
	}
	return bson.M{"_id": bson.M{"$in": values}}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func productSet(product *models.Product, now time.Time) bson.M {
	return bson.M{
		"nombre":      product.Name,
		"descripcion": product.Description,
		"precio":      product.Price,
		"categoria":   product.Category,
		"foto":        product.Photo,
		"updatedAt":   now,
	}
}

func profileUpsert(profile *models.Profile, newID string, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"name":       profile.Name,
			"email":      profile.Email,
			"address":    profile.Address,
			"postalCode": profile.PostalCode,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"_id":       newID,
			"createdAt": now,
		},
	}
}
