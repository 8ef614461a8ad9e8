package queue_tasks

import (
	"context"
	"encoding/json"

	"facegate.io/application/repository"
	"facegate.io/entities"
	"facegate.io/infrastructure/logger"
	mq_types "facegate.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

var HandleRecordCheckInTaskName mq_types.Queues = "record_check_in"

type RecordCheckInPayload struct {
	CheckIn entities.CheckIn
}

// HandleRecordCheckInTask persists an accepted check-in. The detection loop
// enqueues and moves on; retries are the queue's problem, not the camera's.
func HandleRecordCheckInTask(ctx context.Context, t *asynq.Task) error {
	var payload RecordCheckInPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling check-in queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	_, err = repository.CheckInRepo().CreateOne(ctx, payload.CheckIn)
	if err != nil {
		logger.Error("failed to persist check-in", logger.LoggerOptions{
			Key:  "employeeID",
			Data: payload.CheckIn.EmployeeID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	logger.Info("check-in persisted", logger.LoggerOptions{
		Key:  "employeeID",
		Data: payload.CheckIn.EmployeeID,
	})
	return nil
}
