package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/consoleshop/pkg/config"
	"github.com/example/consoleshop/pkg/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository appends bills to a collection as one document each.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type billLineDocument struct {
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int64                `bson:"quantity"`
	Subtotal primitive.Decimal128 `bson:"subtotal"`
}

type billDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Username  string               `bson:"username"`
	Lines     []billLineDocument   `bson:"lines"`
	Total     primitive.Decimal128 `bson:"total"`
	CreatedAt time.Time            `bson:"created_at"`
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	return NewMongoRepositoryFromCollection(client, client.Database(cfg.Database).Collection(cfg.Collection)), nil
}

func NewMongoRepositoryFromCollection(client *mongo.Client, coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{
		client:     client,
		collection: coll,
	}
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func (m *MongoRepository) AppendBill(ctx context.Context, bill *models.Bill) error {
	doc := billDocument{
		Username:  bill.Username,
		Lines:     make([]billLineDocument, len(bill.Lines)),
		CreatedAt: bill.CreatedAt,
	}

	var err error
	for i, l := range bill.Lines {
		line := billLineDocument{Name: l.Name, Quantity: l.Quantity}
		if line.Price, err = toDecimal128(l.Price); err != nil {
			return fmt.Errorf("failed to encode price: %w", err)
		}
		if line.Subtotal, err = toDecimal128(l.Subtotal); err != nil {
			return fmt.Errorf("failed to encode subtotal: %w", err)
		}
		doc.Lines[i] = line
	}
	if doc.Total, err = toDecimal128(bill.Total); err != nil {
		return fmt.Errorf("failed to encode total: %w", err)
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}
