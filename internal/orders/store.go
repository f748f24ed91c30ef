package orders

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

const storeTimeout = 5 * time.Second

type mongoStore struct {
	db *mongo.Database
}

// NewStore returns the Mongo-backed order store. Line items live inside the
// order document, so an insert is atomic without a multi-document
// transaction.
func NewStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res, err := s.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return order, nil
}

func (s *mongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Hydrated, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	hydrated, err := s.hydrate(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (s *mongoStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]Hydrated, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *mongoStore) FindAll(ctx context.Context) ([]Hydrated, error) {
	return s.find(ctx, bson.M{})
}

func (s *mongoStore) find(ctx context.Context, filter bson.M) ([]Hydrated, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})
	cursor, err := s.db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Order
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	return s.hydrate(ctx, found)
}

func (s *mongoStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return s.setField(ctx, id, "status", status)
}

func (s *mongoStore) SetAddress(ctx context.Context, id primitive.ObjectID, address string) error {
	return s.setField(ctx, id, "shippingAddress", address)
}

func (s *mongoStore) setField(ctx context.Context, id primitive.ObjectID, field, value string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	res, err := s.db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// hydrate resolves owners and products for a batch of orders with one $in
// query per collection. Missing references simply stay absent from the maps;
// the assembler turns them into placeholders.
func (s *mongoStore) hydrate(ctx context.Context, found []models.Order) ([]Hydrated, error) {
	userIDs := make([]primitive.ObjectID, 0, len(found))
	seenUsers := make(map[primitive.ObjectID]struct{})
	productIDs := make([]primitive.ObjectID, 0)
	seenProducts := make(map[primitive.ObjectID]struct{})

	for _, order := range found {
		if order.UserID != nil {
			if _, ok := seenUsers[*order.UserID]; !ok {
				seenUsers[*order.UserID] = struct{}{}
				userIDs = append(userIDs, *order.UserID)
			}
		}
		for _, item := range order.Items {
			if _, ok := seenProducts[item.ProductID]; !ok {
				seenProducts[item.ProductID] = struct{}{}
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	userByID := make(map[primitive.ObjectID]models.User, len(userIDs))
	if len(userIDs) > 0 {
		cursor, err := s.db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
		if err != nil {
			return nil, err
		}
		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		for _, user := range users {
			userByID[user.ID] = user
		}
	}

	productByID := make(map[primitive.ObjectID]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		cursor, err := s.db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
		if err != nil {
			return nil, err
		}
		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			return nil, err
		}
		for _, product := range products {
			productByID[product.ID] = product
		}
	}

	hydrated := make([]Hydrated, 0, len(found))
	for _, order := range found {
		h := Hydrated{
			Order:    order,
			Products: make(map[primitive.ObjectID]models.Product, len(order.Items)),
		}
		if order.UserID != nil {
			if user, ok := userByID[*order.UserID]; ok {
				owner := user
				h.Owner = &owner
			}
		}
		for _, item := range order.Items {
			if product, ok := productByID[item.ProductID]; ok {
				h.Products[item.ProductID] = product
			}
		}
		hydrated = append(hydrated, h)
	}
	return hydrated, nil
}
