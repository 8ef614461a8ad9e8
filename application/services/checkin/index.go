package checkin

import (
	"context"
	"encoding/json"

	"facegate.io/application/constants"
	"facegate.io/application/detection"
	"facegate.io/entities"
	"facegate.io/infrastructure/database/repository/cache"
	messagequeue "facegate.io/infrastructure/message_queue"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
	mq_types "facegate.io/infrastructure/message_queue/types"
)

// Recorder hands accepted check-ins to the task queue. Persistence happens
// in the queue worker so a slow write never blocks the detection loop.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(ctx context.Context, checkIn entities.CheckIn) error {
	payload, err := json.Marshal(queue_tasks.RecordCheckInPayload{CheckIn: checkIn})
	if err != nil {
		return err
	}
	messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandleRecordCheckInTaskName,
		Payload:  payload,
		Priority: mq_types.High,
		TimeOut:  30,
		MaxRetry: 5,
	})
	return nil
}

// PublishMatched pushes the accepted match onto the matched-events channel
// for display layers listening outside this process.
func PublishMatched(entry detection.CheckInLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	cache.Cache.Publish(constants.MATCHED_EVENT_CHANNEL, string(data))
}
