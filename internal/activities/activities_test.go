package activities

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/Victoradukwu/FlightsHub/internal/payment"
	"github.com/Victoradukwu/FlightsHub/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type MockReservations struct {
	mock.Mock
}

func (m *MockReservations) ProcessPayment(ctx context.Context, id uuid.UUID, info models.PaymentInfo) error {
	args := m.Called(ctx, id, info)
	return args.Error(0)
}

func (m *MockReservations) SendPaymentReminders(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockReservations) CancelUnpaidReservations(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

var card = models.PaymentInfo{Name: "Ada Obi", CardNumber: "4111111111111111", CVV: 123, ExpMonth: "12", ExpYear: "2099"}

func setup(t *testing.T) (*testsuite.TestActivityEnvironment, *MockReservations, *Activities) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	svc := &MockReservations{}
	acts := NewActivities(svc)
	env.RegisterActivity(acts)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return env, svc, acts
}

func TestProcessPayment_Success(t *testing.T) {
	env, svc, acts := setup(t)
	id := uuid.New()
	svc.On("ProcessPayment", mock.Anything, id, card).Return(nil).Once()

	_, err := env.ExecuteActivity(acts.ProcessPayment, ProcessPaymentInput{ReservationID: id, Payment: card})
	require.NoError(t, err)
}

func TestProcessPayment_NonRetryable(t *testing.T) {
	cases := map[string]struct {
		err     error
		errType string
	}{
		"declined":  {fmt.Errorf("failed to capture payment: %w", payment.ErrDeclined), ErrTypeDeclined},
		"not found": {fmt.Errorf("failed to get reservation: %w", database.ErrNotFound), ErrTypeNotFound},
		"cancelled": {service.ErrReservationClosed, ErrTypeClosed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			env, svc, acts := setup(t)
			id := uuid.New()
			svc.On("ProcessPayment", mock.Anything, id, card).Return(tc.err).Once()

			_, err := env.ExecuteActivity(acts.ProcessPayment, ProcessPaymentInput{ReservationID: id, Payment: card})
			require.Error(t, err)

			var appErr *temporal.ApplicationError
			require.True(t, errors.As(err, &appErr))
			assert.True(t, appErr.NonRetryable())
			assert.Equal(t, tc.errType, appErr.Type())
		})
	}
}

func TestProcessPayment_TransientIsRetryable(t *testing.T) {
	env, svc, acts := setup(t)
	id := uuid.New()
	svc.On("ProcessPayment", mock.Anything, id, card).Return(errors.New("connection reset")).Once()

	_, err := env.ExecuteActivity(acts.ProcessPayment, ProcessPaymentInput{ReservationID: id, Payment: card})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.False(t, appErr.NonRetryable())
}

func TestSweepActivities(t *testing.T) {
	env, svc, acts := setup(t)
	now := time.Date(2030, 5, 1, 10, 45, 0, 0, time.UTC)
	svc.On("SendPaymentReminders", mock.Anything, now).Return(3, nil).Once()
	svc.On("CancelUnpaidReservations", mock.Anything, now).Return(2, nil).Once()

	val, err := env.ExecuteActivity(acts.SendPaymentReminders, SweepInput{Now: now})
	require.NoError(t, err)
	var sent int
	require.NoError(t, val.Get(&sent))
	assert.Equal(t, 3, sent)

	val, err = env.ExecuteActivity(acts.CancelUnpaidReservations, SweepInput{Now: now})
	require.NoError(t, err)
	var cancelled int
	require.NoError(t, val.Get(&cancelled))
	assert.Equal(t, 2, cancelled)
}

func TestSweepActivities_Error(t *testing.T) {
	env, svc, acts := setup(t)
	svc.On("CancelUnpaidReservations", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()

	_, err := env.ExecuteActivity(acts.CancelUnpaidReservations, SweepInput{Now: time.Now().UTC()})
	assert.Error(t, err)
}
