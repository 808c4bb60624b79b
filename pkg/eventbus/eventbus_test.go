package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Success(t *testing.T) {
	data := map[string]string{"trip_id": "TB-ABCD2345"}

	event, err := NewEvent(SubjectBookingConfirmed, "booking-service", data)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, "bookings.confirmed", event.Type)
	assert.Equal(t, "booking-service", event.Source)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	// ID should be a valid UUID
	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded map[string]string
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "TB-ABCD2345", decoded["trip_id"])
}

func TestNewEvent_NilData(t *testing.T) {
	event, err := NewEvent("test.event", "test-source", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), event.Data)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	// Channels cannot be marshaled to JSON
	event, err := NewEvent("test", "src", make(chan int))
	assert.Error(t, err)
	assert.Nil(t, event)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event, err := NewEvent("test", "src", nil)
		require.NoError(t, err)
		assert.False(t, ids[event.ID], "duplicate event ID generated")
		ids[event.ID] = true
	}
}

func TestNewEvent_TimestampIsUTC(t *testing.T) {
	event, err := NewEvent("test", "src", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, event.Timestamp.Location())
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	original, err := NewEvent(SubjectBookingCompleted, "booking-service", map[string]int{"total": 150})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Event
	err = json.Unmarshal(data, &restored)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Type, restored.Type)
	assert.Equal(t, original.Source, restored.Source)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestSubjectConstants(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{"BookingConfirmed", SubjectBookingConfirmed, "bookings.confirmed"},
		{"BookingCancelled", SubjectBookingCancelled, "bookings.cancelled"},
		{"BookingCompleted", SubjectBookingCompleted, "bookings.completed"},
		{"BookingFlagged", SubjectBookingFlagged, "bookings.flagged"},
		{"PaymentFailed", SubjectPaymentFailed, "payments.failed"},
		{"PaymentRefunded", SubjectPaymentRefunded, "payments.refunded"},
		{"DispatchOffered", SubjectDispatchOffered, "dispatch.offered"},
		{"DispatchAccepted", SubjectDispatchAccepted, "dispatch.accepted"},
		{"DispatchReassigned", SubjectDispatchReassigned, "dispatch.reassigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.subject)
		})
	}
}

func TestHandlerFunc_Invocation(t *testing.T) {
	var called bool
	var receivedEvent *Event

	handler := HandlerFunc(func(ctx context.Context, event *Event) error {
		called = true
		receivedEvent = event
		return nil
	})

	event, _ := NewEvent("test.event", "test", map[string]string{"key": "value"})
	err := handler(context.Background(), event)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, event.ID, receivedEvent.ID)
}

func TestHandlerFunc_ReturnsError(t *testing.T) {
	handler := HandlerFunc(func(ctx context.Context, event *Event) error {
		return assert.AnError
	})

	event, _ := NewEvent("test", "src", nil)
	err := handler(context.Background(), event)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewEvent_WithBookingConfirmedData(t *testing.T) {
	data := BookingConfirmedData{
		BookingID:       uuid.New(),
		TripID:          "TB-K2M4P6R8",
		CustomerName:    "Anna Keller",
		CustomerEmail:   "anna@example.com",
		BookingType:     "destination",
		Pickup:          "Zurich Airport",
		Dropoff:         "Lucerne",
		PickupTime:      time.Date(2026, 9, 12, 9, 30, 0, 0, time.UTC),
		VehicleName:     "Business Sedan",
		VehicleCategory: "sedan",
		PaymentMethod:   "stripe",
		TotalAmount:     150,
		Currency:        "eur",
		NeedsDispatch:   true,
		ConfirmedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}

	event, err := NewEvent(SubjectBookingConfirmed, "booking-service", data)
	require.NoError(t, err)

	var decoded BookingConfirmedData
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, data.BookingID, decoded.BookingID)
	assert.Equal(t, data.TripID, decoded.TripID)
	assert.Equal(t, data.TotalAmount, decoded.TotalAmount)
	assert.True(t, decoded.NeedsDispatch)
}

func TestNewEvent_WithDispatchOfferedData(t *testing.T) {
	data := DispatchOfferedData{
		BookingID:       uuid.New(),
		TripID:          "TB-K2M4P6R8",
		VehicleCategory: "van",
		Pickup:          "Geneva",
		PickupTime:      time.Date(2026, 10, 2, 14, 0, 0, 0, time.UTC),
		PartnerIDs:      []uuid.UUID{uuid.New(), uuid.New()},
		OfferedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}

	event, err := NewEvent(SubjectDispatchOffered, "dispatch-service", data)
	require.NoError(t, err)

	var decoded DispatchOfferedData
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Len(t, decoded.PartnerIDs, 2)
	assert.Equal(t, data.VehicleCategory, decoded.VehicleCategory)
}

func TestBookingCancelledData_NilPartner(t *testing.T) {
	data := BookingCancelledData{
		BookingID:     uuid.New(),
		TripID:        "TB-K2M4P6R8",
		RefundAmount:  75,
		RefundPct:     50,
		PaymentMethod: "stripe",
		CancelledAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	b, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded BookingCancelledData
	err = json.Unmarshal(b, &decoded)
	require.NoError(t, err)

	assert.Nil(t, decoded.AssignedPartnerID)
	assert.Equal(t, 50.0, decoded.RefundPct)
}

func TestBus_Connected_NilConn(t *testing.T) {
	bus := &Bus{}
	assert.False(t, bus.Connected())
}

func TestBus_Close_NoSubs(t *testing.T) {
	bus := &Bus{}
	// Should not panic
	bus.Close()
}
