package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlertsTask_Payload(t *testing.T) {
	end := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	task, err := NewEvaluateAlertsTask(EvaluateAlertsPayload{IntegrationID: "int-1", Start: end.AddDate(0, 0, -30), End: end})
	require.NoError(t, err)
	assert.Equal(t, TypeEvaluateAlerts, task.Type())

	var got EvaluateAlertsPayload
	require.NoError(t, DecodePayload(task, &got))
	assert.Equal(t, "int-1", got.IntegrationID)
	assert.True(t, end.Equal(got.End))
}

func TestDecodePayload_InvalidSkipsRetry(t *testing.T) {
	task := asynq.NewTask(TypeArchiveExport, []byte("{not json"))

	var got ArchiveExportPayload
	err := DecodePayload(task, &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
