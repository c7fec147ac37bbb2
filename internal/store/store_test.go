package store

import (
	"context"
	"testing"
	"time"

	"messaging-service/internal/consent"
	"messaging-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixtures struct {
	db           *gorm.DB
	customers    *CustomerStore
	messages     *MessageStore
	appointments *AppointmentStore
	tenants      *TenantStore
	numbers      *SenderNumberStore
}

func setupStores(t *testing.T) *fixtures {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Customer{},
		&model.ConsentLog{},
		&model.Message{},
		&model.Appointment{},
		&model.SenderNumber{},
	))

	ledger := consent.NewLedger(db)
	return &fixtures{
		db:           db,
		customers:    NewCustomerStore(db, ledger),
		messages:     NewMessageStore(db),
		appointments: NewAppointmentStore(db),
		tenants:      NewTenantStore(db),
		numbers:      NewSenderNumberStore(db),
	}
}

func (f *fixtures) createTenant(t *testing.T, name string) *model.Tenant {
	tenant := model.Tenant{Name: name, Timezone: "UTC"}
	require.NoError(t, f.tenants.Create(context.Background(), &tenant))
	return &tenant
}

func (f *fixtures) createCustomer(t *testing.T, tenantID uint, phone string) *model.Customer {
	customer := model.Customer{
		TenantID:      tenantID,
		FirstName:     "Grace",
		LastName:      "Hopper",
		Phone:         phone,
		ConsentStatus: model.ConsentActive,
	}
	require.NoError(t, f.customers.Create(context.Background(), &customer))
	return &customer
}

func TestCustomerStore_Create(t *testing.T) {
	f := setupStores(t)
	ctx := context.Background()
	tenant := f.createTenant(t, "Tenant A")

	t.Run("creates the initial opt-in consent log", func(t *testing.T) {
		customer := f.createCustomer(t, tenant.ID, "+15550100001")

		var logs []model.ConsentLog
		require.NoError(t, f.db.Where("customer_id = ?", customer.ID).Find(&logs).Error)
		require.Len(t, logs, 1)
		assert.Equal(t, model.ConsentEventOptedIn, logs[0].EventType)
		assert.Equal(t, consent.DefaultOptInText, logs[0].ConsentText)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		err := f.customers.Create(ctx, &model.Customer{TenantID: tenant.ID, Phone: "+15550100002"})
		assert.ErrorIs(t, err, ErrMissingName)
	})

	t.Run("rejects missing phone", func(t *testing.T) {
		err := f.customers.Create(ctx, &model.Customer{TenantID: tenant.ID, FirstName: "No", LastName: "Phone"})
		assert.ErrorIs(t, err, ErrMissingPhone)
	})

	t.Run("same phone allowed across tenants", func(t *testing.T) {
		other := f.createTenant(t, "Tenant B")
		f.createCustomer(t, tenant.ID, "+15550100003")
		f.createCustomer(t, other.ID, "+15550100003")
	})
}

func TestTenantIsolation(t *testing.T) {
	f := setupStores(t)
	ctx := context.Background()

	tenantA := f.createTenant(t, "Tenant A")
	tenantB := f.createTenant(t, "Tenant B")

	customerA := f.createCustomer(t, tenantA.ID, "+15550200001")
	customerB := f.createCustomer(t, tenantB.ID, "+15550200002")

	msgA := model.Message{TenantID: tenantA.ID, CustomerID: customerA.ID, Direction: model.DirectionInbound, Status: model.MessageReceived, Body: "hi"}
	require.NoError(t, f.messages.Create(ctx, &msgA))
	msgB := model.Message{TenantID: tenantB.ID, CustomerID: customerB.ID, Direction: model.DirectionInbound, Status: model.MessageReceived, Body: "hello"}
	require.NoError(t, f.messages.Create(ctx, &msgB))

	now := time.Now()
	apptA := model.Appointment{TenantID: tenantA.ID, CustomerID: customerA.ID, StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25 * time.Hour)}
	require.NoError(t, f.appointments.Create(ctx, &apptA))
	apptB := model.Appointment{TenantID: tenantB.ID, CustomerID: customerB.ID, StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25 * time.Hour)}
	require.NoError(t, f.appointments.Create(ctx, &apptB))

	t.Run("counts under one tenant exclude the other", func(t *testing.T) {
		customers, err := f.customers.CountByTenant(ctx, tenantA.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), customers)

		messages, err := f.messages.CountByTenant(ctx, tenantA.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), messages)

		appointments, err := f.appointments.CountByTenant(ctx, tenantA.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), appointments)
	})

	t.Run("fetching the other tenant's rows by id fails", func(t *testing.T) {
		_, err := f.customers.FindByID(ctx, tenantA.ID, customerB.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = f.messages.FindByID(ctx, tenantA.ID, msgB.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = f.appointments.FindByID(ctx, tenantA.ID, apptB.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("cross-tenant message creation is rejected", func(t *testing.T) {
		bad := model.Message{TenantID: tenantA.ID, CustomerID: customerB.ID, Direction: model.DirectionOutbound, Status: model.MessageQueued, Body: "leak"}
		err := f.messages.Create(ctx, &bad)
		assert.ErrorIs(t, err, ErrTenantMismatch)
	})

	t.Run("unscoped phone lookup resolves across tenants", func(t *testing.T) {
		found, err := f.customers.FindByPhoneUnscoped(ctx, "+15550200002")
		require.NoError(t, err)
		assert.Equal(t, tenantB.ID, found.TenantID)
	})
}

func TestMessageStore_Validation(t *testing.T) {
	f := setupStores(t)
	ctx := context.Background()
	tenant := f.createTenant(t, "Tenant A")
	customer := f.createCustomer(t, tenant.ID, "+15550300001")

	t.Run("rejects empty body", func(t *testing.T) {
		err := f.messages.Create(ctx, &model.Message{TenantID: tenant.ID, CustomerID: customer.ID, Direction: model.DirectionInbound})
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("rejects missing direction", func(t *testing.T) {
		err := f.messages.Create(ctx, &model.Message{TenantID: tenant.ID, CustomerID: customer.ID, Body: "hi"})
		assert.ErrorIs(t, err, ErrMissingDirection)
	})

	t.Run("finds by carrier sid", func(t *testing.T) {
		sid := "SM900001"
		msg := model.Message{TenantID: tenant.ID, CustomerID: customer.ID, Direction: model.DirectionOutbound, Status: model.MessageSent, Body: "hi", CarrierSID: &sid}
		require.NoError(t, f.messages.Create(ctx, &msg))

		found, err := f.messages.FindByCarrierSID(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, found.ID)

		_, err = f.messages.FindByCarrierSID(ctx, "SM-unknown")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestSenderNumberStore_Lifecycle(t *testing.T) {
	f := setupStores(t)
	ctx := context.Background()
	tenant := f.createTenant(t, "Tenant A")

	number := model.SenderNumber{TenantID: tenant.ID, PhoneNumber: "+15550400001", Location: "New York", Status: model.SenderNumberPending}
	require.NoError(t, f.numbers.Create(ctx, &number))

	_, err := f.numbers.ActiveForTenant(ctx, tenant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, f.numbers.Approve(ctx, tenant.ID, number.ID))
	require.NoError(t, f.numbers.Activate(ctx, tenant.ID, number.ID))

	active, err := f.numbers.ActiveForTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15550400001", active.PhoneNumber)

	t.Run("status changes are tenant-scoped", func(t *testing.T) {
		other := f.createTenant(t, "Tenant B")
		err := f.numbers.Approve(ctx, other.ID, number.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestAppointmentStore_Validation(t *testing.T) {
	f := setupStores(t)
	ctx := context.Background()
	tenant := f.createTenant(t, "Tenant A")
	customer := f.createCustomer(t, tenant.ID, "+15550500001")

	now := time.Now()
	bad := model.Appointment{TenantID: tenant.ID, CustomerID: customer.ID, StartTime: now.Add(2 * time.Hour), EndTime: now.Add(1 * time.Hour)}
	err := f.appointments.Create(ctx, &bad)
	assert.ErrorIs(t, err, model.ErrEndBeforeStart)
}
