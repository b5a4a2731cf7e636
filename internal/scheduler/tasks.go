package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadsRescore = "leads:rescore"

const TaskFinanceSync = "finance:sync"

const TaskAuthCleanupTokens = "auth:cleanup_tokens"

type FinanceSyncPayload struct {
	ProjectID string `json:"projectId"`
}

func NewLeadsRescoreTask() *asynq.Task {
	return asynq.NewTask(TaskLeadsRescore, nil)
}

func NewFinanceSyncTask(payload FinanceSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFinanceSync, data), nil
}

func ParseFinanceSyncPayload(task *asynq.Task) (FinanceSyncPayload, error) {
	var payload FinanceSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FinanceSyncPayload{}, err
	}
	return payload, nil
}

func NewAuthCleanupTokensTask() *asynq.Task {
	return asynq.NewTask(TaskAuthCleanupTokens, nil)
}
