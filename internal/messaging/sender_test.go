package messaging

import (
	"context"
	"testing"
	"time"

	"messaging-service/internal/carrier"
	"messaging-service/internal/consent"
	"messaging-service/internal/model"
	"messaging-service/internal/notify"
	"messaging-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sendCall struct {
	to   string
	from string
	body string
}

type mockProvider struct {
	SendFunc func(ctx context.Context, to, from, body string) (*carrier.SendResult, error)
	calls    []sendCall
}

func (m *mockProvider) SendSMS(ctx context.Context, to, from, body string) (*carrier.SendResult, error) {
	m.calls = append(m.calls, sendCall{to: to, from: from, body: body})
	return m.SendFunc(ctx, to, from, body)
}

type capturingNotifier struct {
	events []notify.MessageEvent
}

func (c *capturingNotifier) PublishMessage(ctx context.Context, event notify.MessageEvent) error {
	c.events = append(c.events, event)
	return nil
}

type syncEnqueuer struct {
	sender *Sender
}

func (s *syncEnqueuer) Enqueue(name string, run func(ctx context.Context) error) error {
	return run(context.Background())
}

type senderFixture struct {
	db       *gorm.DB
	sender   *Sender
	provider *mockProvider
	notifier *capturingNotifier
	tenant   *model.Tenant
	customer *model.Customer
}

func setupSender(t *testing.T, status model.ConsentStatus) *senderFixture {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Customer{},
		&model.ConsentLog{},
		&model.Message{},
		&model.SenderNumber{},
	))

	tenant := model.Tenant{Name: "Glow Salon", Timezone: "America/New_York"}
	require.NoError(t, db.Create(&tenant).Error)

	customer := model.Customer{
		TenantID:      tenant.ID,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Phone:         "+15550001111",
		ConsentStatus: status,
	}
	require.NoError(t, db.Create(&customer).Error)

	ledger := consent.NewLedger(db)
	provider := &mockProvider{
		SendFunc: func(ctx context.Context, to, from, body string) (*carrier.SendResult, error) {
			return &carrier.SendResult{SID: "SM123", Status: "queued"}, nil
		},
	}
	notifier := &capturingNotifier{}

	sender := NewSender(
		store.NewCustomerStore(db, ledger),
		store.NewTenantStore(db),
		store.NewSenderNumberStore(db),
		store.NewMessageStore(db),
		provider,
		notifier,
		nil,
		"+15559990000",
		zap.NewNop(),
	)

	return &senderFixture{db: db, sender: sender, provider: provider, notifier: notifier, tenant: &tenant, customer: &customer}
}

func (f *senderFixture) countMessages(t *testing.T) int64 {
	var count int64
	require.NoError(t, f.db.Model(&model.Message{}).Count(&count).Error)
	return count
}

func TestSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("records a sent message with the carrier sid", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "Your appointment is tomorrow"))

		require.Len(t, f.provider.calls, 1)
		assert.Equal(t, "+15550001111", f.provider.calls[0].to)
		assert.Equal(t, "+15559990000", f.provider.calls[0].from)

		var msg model.Message
		require.NoError(t, f.db.First(&msg).Error)
		assert.Equal(t, model.DirectionOutbound, msg.Direction)
		assert.Equal(t, model.MessageSent, msg.Status)
		require.NotNil(t, msg.CarrierSID)
		assert.Equal(t, "SM123", *msg.CarrierSID)

		require.Len(t, f.notifier.events, 1)
		assert.Equal(t, msg.ID, f.notifier.events[0].MessageID)
		assert.Equal(t, f.tenant.ID, f.notifier.events[0].TenantID)
	})

	t.Run("skips without a carrier call when consent is missing", func(t *testing.T) {
		f := setupSender(t, model.ConsentOptedOut)

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "promo"))

		assert.Empty(t, f.provider.calls)
		assert.Equal(t, int64(0), f.countMessages(t))
		assert.Empty(t, f.notifier.events)
	})

	t.Run("pending consent also skips", func(t *testing.T) {
		f := setupSender(t, model.ConsentPending)

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "promo"))

		assert.Empty(t, f.provider.calls)
		assert.Equal(t, int64(0), f.countMessages(t))
	})

	t.Run("carrier error is captured as a failed message", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)
		f.provider.SendFunc = func(ctx context.Context, to, from, body string) (*carrier.SendResult, error) {
			return nil, &carrier.Error{Kind: carrier.ErrorAPI, Message: "failed to send SMS: invalid number"}
		}

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "hello"))

		var msg model.Message
		require.NoError(t, f.db.First(&msg).Error)
		assert.Equal(t, model.MessageFailed, msg.Status)
		assert.NotEmpty(t, msg.ErrorMessage)
		assert.Nil(t, msg.CarrierSID)
		assert.Empty(t, f.notifier.events)
	})

	t.Run("unknown customer is a fatal error", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)

		err := f.sender.Send(ctx, 9999, f.tenant.ID, "hello")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Empty(t, f.provider.calls)
	})

	t.Run("customer from another tenant is a fatal error", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)
		other := model.Tenant{Name: "Other", Timezone: "UTC"}
		require.NoError(t, f.db.Create(&other).Error)

		err := f.sender.Send(ctx, f.customer.ID, other.ID, "hello")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Empty(t, f.provider.calls)
	})

	t.Run("prefers the tenant's active sender number", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)
		number := model.SenderNumber{TenantID: f.tenant.ID, PhoneNumber: "+15558887777", Status: model.SenderNumberActive}
		require.NoError(t, f.db.Create(&number).Error)

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "hello"))

		require.Len(t, f.provider.calls, 1)
		assert.Equal(t, "+15558887777", f.provider.calls[0].from)
	})

	t.Run("pending sender number falls back to the default", func(t *testing.T) {
		f := setupSender(t, model.ConsentActive)
		number := model.SenderNumber{TenantID: f.tenant.ID, PhoneNumber: "+15558887777", Status: model.SenderNumberPending}
		require.NoError(t, f.db.Create(&number).Error)

		require.NoError(t, f.sender.Send(ctx, f.customer.ID, f.tenant.ID, "hello"))

		require.Len(t, f.provider.calls, 1)
		assert.Equal(t, "+15559990000", f.provider.calls[0].from)
	})
}

func TestSender_Enqueue(t *testing.T) {
	f := setupSender(t, model.ConsentActive)
	f.sender.enqueuer = &syncEnqueuer{sender: f.sender}

	require.NoError(t, f.sender.Enqueue(f.customer.ID, f.tenant.ID, "queued hello"))

	var msg model.Message
	require.NoError(t, f.db.First(&msg).Error)
	assert.Equal(t, "queued hello", msg.Body)
	assert.WithinDuration(t, time.Now(), msg.CreatedAt, 5*time.Second)
}
