// Package jobs defines the background task surface: dashboard cache
// warmup, the weekly compliance scan and reminder mail.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard caches for a week.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskComplianceScan checks the current week for overdue sites.
	TaskComplianceScan = "compliance:scan"
	// TaskTypeSendEmail is the task type for sending reminder emails.
	TaskTypeSendEmail = "mail:send"
)

// DashboardWarmupPayload names the week whose caches should be rebuilt.
type DashboardWarmupPayload struct {
	Week string `json:"week"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewComplianceScanTask constructs the scan task; it carries no payload
// because the scan always targets the week of its own run.
func NewComplianceScanTask() *asynq.Task {
	return asynq.NewTask(TaskComplianceScan, nil)
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}
