package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskFollowUpSweep fans out one tenant task per organization with open leads.
const TaskFollowUpSweep = "leads.followup_sweep"

// TaskFollowUpTenant evaluates a single organization's open leads.
const TaskFollowUpTenant = "leads.followup_tenant"

type FollowUpTenantPayload struct {
	TenantID string `json:"tenantId"`
}

func NewFollowUpSweepTask() *asynq.Task {
	return asynq.NewTask(TaskFollowUpSweep, nil)
}

func NewFollowUpTenantTask(payload FollowUpTenantPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpTenant, data), nil
}

func ParseFollowUpTenantPayload(task *asynq.Task) (FollowUpTenantPayload, error) {
	var payload FollowUpTenantPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpTenantPayload{}, err
	}
	return payload, nil
}
