package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskScoreReport = "reports.score"

type ScoreReportPayload struct {
	ReportID string `json:"reportId"`
}

func NewScoreReportTask(payload ScoreReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreReport, data), nil
}

func ParseScoreReportPayload(task *asynq.Task) (ScoreReportPayload, error) {
	var payload ScoreReportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreReportPayload{}, err
	}
	return payload, nil
}

// reportID parses and validates the payload's report ID.
func (p ScoreReportPayload) reportID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.ReportID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid report id %q: %w", p.ReportID, err)
	}
	return id, nil
}
