package workflows

import (
	"errors"
	"time"

	"github.com/stretchr/testify/mock"
)

func (s *WorkflowTestSuite) sweep() (*SweepResult, error) {
	s.env.ExecuteWorkflow(ReservationSweepWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	if err := s.env.GetWorkflowError(); err != nil {
		return nil, err
	}
	var result SweepResult
	s.Require().NoError(s.env.GetWorkflowResult(&result))
	return &result, nil
}

func (s *WorkflowTestSuite) TestSweep() {
	start := time.Date(2030, 5, 1, 10, 45, 0, 0, time.UTC)
	s.env.SetStartTime(start)
	sameTime := mock.MatchedBy(func(t time.Time) bool { return t.Equal(start) })
	s.svc.On("SendPaymentReminders", mock.Anything, sameTime).Return(2, nil).Once()
	s.svc.On("CancelUnpaidReservations", mock.Anything, sameTime).Return(1, nil).Once()

	result, err := s.sweep()
	s.Require().NoError(err)
	s.Equal(2, result.Reminded)
	s.Equal(1, result.Cancelled)
}

func (s *WorkflowTestSuite) TestSweep_ReminderFailureStillCancels() {
	s.svc.On("SendPaymentReminders", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Times(3)
	s.svc.On("CancelUnpaidReservations", mock.Anything, mock.Anything).Return(4, nil).Once()

	result, err := s.sweep()
	s.Require().NoError(err)
	s.Zero(result.Reminded)
	s.Equal(4, result.Cancelled)
}

func (s *WorkflowTestSuite) TestSweep_CancellationFailure() {
	s.svc.On("SendPaymentReminders", mock.Anything, mock.Anything).Return(0, nil).Once()
	s.svc.On("CancelUnpaidReservations", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Times(3)

	_, err := s.sweep()
	s.Error(err)
}
