package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victoradukwu/FlightsHub/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

const SweepWorkflowID = "reservation-sweep"

// WorkflowStarter is the part of client.Client used to start workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

func TicketingWorkflowID(reservationID uuid.UUID) string {
	return "ticketing-" + reservationID.String()
}

// TemporalScheduler starts one TicketingWorkflow per reservation. A second
// request while one is running joins the running workflow.
type TemporalScheduler struct {
	client    WorkflowStarter
	taskQueue string
	log       logrus.FieldLogger
}

func NewTemporalScheduler(c WorkflowStarter, taskQueue string, log logrus.FieldLogger) *TemporalScheduler {
	return &TemporalScheduler{client: c, taskQueue: taskQueue, log: log}
}

func (s *TemporalScheduler) ScheduleTicketing(ctx context.Context, reservationID uuid.UUID, info models.PaymentInfo) error {
	opts := client.StartWorkflowOptions{
		ID:        TicketingWorkflowID(reservationID),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, TicketingWorkflow, TicketingInput{
		ReservationID: reservationID,
		Payment:       info,
	})
	if err != nil {
		return fmt.Errorf("failed to start ticketing workflow: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"workflow_id":    run.GetID(),
		"run_id":         run.GetRunID(),
	}).Info("ticketing workflow started")
	return nil
}

// StartSweep starts the cron sweep workflow. It is a no-op when the sweep
// is already scheduled.
func StartSweep(ctx context.Context, c WorkflowStarter, taskQueue, schedule string, log logrus.FieldLogger) error {
	opts := client.StartWorkflowOptions{
		ID:                                       SweepWorkflowID,
		TaskQueue:                                taskQueue,
		CronSchedule:                             schedule,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	_, err := c.ExecuteWorkflow(ctx, opts, ReservationSweepWorkflow)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		log.WithField("workflow_id", SweepWorkflowID).Info("reservation sweep already scheduled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start reservation sweep: %w", err)
	}
	log.WithFields(logrus.Fields{"workflow_id": SweepWorkflowID, "schedule": schedule}).Info("reservation sweep scheduled")
	return nil
}

// RunSweepOnce runs a single sweep outside the cron schedule and waits for
// its result.
func RunSweepOnce(ctx context.Context, c WorkflowStarter, taskQueue string) (*SweepResult, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        SweepWorkflowID + "-" + uuid.NewString(),
		TaskQueue: taskQueue,
	}, ReservationSweepWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to start reservation sweep: %w", err)
	}
	var result SweepResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("reservation sweep failed: %w", err)
	}
	return &result, nil
}
