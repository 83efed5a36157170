package repository

import (
	"context"
	"testing"
	"time"

	"github.com/example/consoleshop/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository_AppendBill(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	bill := &models.Bill{
		Username: "ann",
		Lines: []models.BillLine{
			{Name: "Pen", Price: dec("10"), Quantity: 3, Subtotal: dec("30")},
		},
		Total:     dec("30"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	mt.Run("inserts one document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoRepositoryFromCollection(mt.Client, mt.Coll)

		require.NoError(mt, repo.AppendBill(context.Background(), bill))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)

		docs, ok := started.Command.Lookup("documents").ArrayOK()
		require.True(mt, ok)
		values, err := docs.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 1)

		var doc billDocument
		require.NoError(mt, bson.Unmarshal(values[0].Document(), &doc))
		assert.Equal(mt, "ann", doc.Username)
		require.Len(mt, doc.Lines, 1)
		assert.Equal(mt, "Pen", doc.Lines[0].Name)

		want, err := primitive.ParseDecimal128("30")
		require.NoError(mt, err)
		assert.Equal(mt, want.String(), doc.Total.String())
	})

	mt.Run("reports write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewMongoRepositoryFromCollection(mt.Client, mt.Coll)

		assert.Error(mt, repo.AppendBill(context.Background(), bill))
	})
}
