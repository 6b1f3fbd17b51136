package jetstream_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donat3/ledger-core/internal/adapter"
	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/logger"
	"github.com/donat3/ledger-core/internal/mocks"
	"github.com/donat3/ledger-core/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "LEDGER_EVENTS",
		MaxReconnects:  3,
		ReconnectWait:  time.Second,
		ConnectionName: "test",
	}
}

func TestNewPublisher_CreatesStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)

	natsJS.EXPECT().
		Connect(gomock.Eq("nats://localhost:4222"), gomock.Any()).
		Return(conn, js, nil)
	js.EXPECT().
		CreateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) (natsjs.Stream, error) {
			assert.Equal(t, "LEDGER_EVENTS", cfg.Name)
			assert.Equal(t, []string{"ledger.>"}, cfg.Subjects)
			return nil, nil
		})

	publisher, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)
	require.NotNil(t, publisher)

	conn.EXPECT().Close()
	publisher.Close()
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("nats: no servers available"))

	_, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.ErrorContains(t, err, "failed to connect to NATS")
}

func TestNewPublisher_CreateStreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)

	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(conn, js, nil)
	js.EXPECT().
		CreateStream(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("nats: insufficient storage"))
	conn.EXPECT().Close()

	_, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.ErrorContains(t, err, "failed to create stream")
}

func TestPublishEvent_SubjectRouting(t *testing.T) {
	tests := []struct {
		name      string
		eventType domain.EventType
		subject   string
	}{
		{
			name:      "mint routes to token",
			eventType: domain.EventTypeMinted,
			subject:   "ledger.token.minted",
		},
		{
			name:      "bid routes to auction",
			eventType: domain.EventTypeBidCreated,
			subject:   "ledger.auction.bid_created",
		},
		{
			name:      "settlement routes to auction",
			eventType: domain.EventTypeAuctionCompleted,
			subject:   "ledger.auction.auction_completed",
		},
		{
			name:      "donation routes to donation",
			eventType: domain.EventTypeDonationReceived,
			subject:   "ledger.donation.donation_received",
		},
		{
			name:      "milestone claim routes to donation",
			eventType: domain.EventTypeMilestoneClaimed,
			subject:   "ledger.donation.milestone_claimed",
		},
		{
			name:      "credit routes to account",
			eventType: domain.EventTypeAccountCredited,
			subject:   "ledger.account.account_credited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			conn := mocks.NewMockNatsConn(ctrl)
			js := mocks.NewMockJetStream(ctrl)
			natsJS := mocks.NewMockNatsJetStream(ctrl)

			natsJS.EXPECT().
				Connect(gomock.Any(), gomock.Any()).
				Return(conn, js, nil)
			js.EXPECT().CreateStream(gomock.Any(), gomock.Any()).Return(nil, nil)

			publisher, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
			require.NoError(t, err)

			js.EXPECT().
				Publish(gomock.Any(), gomock.Eq(tt.subject), gomock.Any()).
				Return(&natsjs.PubAck{}, nil)

			err = publisher.PublishEvent(context.Background(), &domain.LedgerEvent{
				ID:        "01JGXYZ0000000000000000000",
				Type:      tt.eventType,
				Timestamp: time.Now().UTC(),
			})
			assert.NoError(t, err)
		})
	}
}

func TestPublishEvent_MarshalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)
	jsonAdapter := mocks.NewMockJSON(ctrl)

	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(conn, js, nil)
	js.EXPECT().CreateStream(gomock.Any(), gomock.Any()).Return(nil, nil)
	jsonAdapter.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("marshal failed"))

	publisher, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, jsonAdapter)
	require.NoError(t, err)

	err = publisher.PublishEvent(context.Background(), &domain.LedgerEvent{
		ID:   "01JGXYZ0000000000000000000",
		Type: domain.EventTypeMinted,
	})
	assert.ErrorContains(t, err, "failed to marshal event")
}

func TestPublishEvent_BrokerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)

	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(conn, js, nil)
	js.EXPECT().CreateStream(gomock.Any(), gomock.Any()).Return(nil, nil)
	js.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("nats: timeout"))

	publisher, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)

	err = publisher.PublishEvent(context.Background(), &domain.LedgerEvent{
		ID:   "01JGXYZ0000000000000000000",
		Type: domain.EventTypeMinted,
	})
	assert.ErrorContains(t, err, "failed to publish event")
}
