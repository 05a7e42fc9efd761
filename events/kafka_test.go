package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-storefront/models"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:           "65f1c0ffee0000000000abcd",
		OrderNumber:  "ORD-1-ABCDE",
		CustomerID:   "c1",
		RestaurantID: "r1",
		Status:       models.StatusConfirmed,
		Pricing:      models.Pricing{Total: 21.5},
	}
}

func TestKafkaPublisherSendsKeyedJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != OrderStatusChanged || e.PreviousStatus != models.StatusPending || e.Total != 21.5 {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "storefront.orders")
	err := p.Publish(context.Background(), NewOrderEvent(OrderStatusChanged, testOrder(), models.StatusPending))
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafkaPublisherReportsFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "storefront.orders")
	err := p.Publish(context.Background(), NewOrderEvent(OrderCreated, testOrder(), ""))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestKafkaPublisherHonorsCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	p := NewKafkaPublisherWithProducer(producer, "t")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, NewOrderEvent(OrderCreated, testOrder(), "")), context.Canceled)
	require.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
