package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/linkflow-ai/insights/internal/domain/services"
	"github.com/linkflow-ai/insights/internal/insights"
	"github.com/linkflow-ai/insights/internal/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlerts struct {
	integrationID string
	rng           insights.DateRange
	err           error
}

func (f *fakeAlerts) Evaluate(_ context.Context, integrationID string, rng insights.DateRange) (*services.AlertBatch, error) {
	f.integrationID, f.rng = integrationID, rng
	if f.err != nil {
		return nil, f.err
	}
	return &services.AlertBatch{
		IntegrationID: integrationID,
		DateRange:     rng,
		Alerts:        []insights.PerformanceAlert{{ID: "a1"}},
	}, nil
}

type fakeArchive struct {
	exportID string
	calls    int
	err      error
}

func (f *fakeArchive) Archive(_ context.Context, integrationID, exportID string, _ insights.DateRange) (string, error) {
	f.calls++
	f.exportID = exportID
	if f.err != nil {
		return "", f.err
	}
	return "exports/" + integrationID + "/" + exportID + ".json", nil
}

var (
	windowEnd   = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	windowStart = windowEnd.Add(-24 * time.Hour)
)

func rawTask(t *testing.T, typ string, payload interface{}) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typ, data)
}

func TestHandleEvaluateAlerts(t *testing.T) {
	alerts := &fakeAlerts{}
	w := &Worker{alerts: alerts, archive: &fakeArchive{}}

	task, err := queue.NewEvaluateAlertsTask(queue.EvaluateAlertsPayload{
		IntegrationID: "int-1", Start: windowStart, End: windowEnd,
	})
	require.NoError(t, err)

	require.NoError(t, w.handleEvaluateAlerts(context.Background(), task))
	assert.Equal(t, "int-1", alerts.integrationID)
	assert.True(t, windowStart.Equal(alerts.rng.Start))
	assert.True(t, windowEnd.Equal(alerts.rng.End))
}

func TestHandleEvaluateAlerts_ErrorIsRetried(t *testing.T) {
	boom := errors.New("store down")
	w := &Worker{alerts: &fakeAlerts{err: boom}}

	task, err := queue.NewEvaluateAlertsTask(queue.EvaluateAlertsPayload{
		IntegrationID: "int-1", Start: windowStart, End: windowEnd,
	})
	require.NoError(t, err)

	err = w.handleEvaluateAlerts(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleEvaluateAlerts_BadPayloadSkipsRetry(t *testing.T) {
	w := &Worker{alerts: &fakeAlerts{}}

	tests := []struct {
		name string
		task *asynq.Task
	}{
		{"malformed", asynq.NewTask(queue.TypeEvaluateAlerts, []byte("{"))},
		{"missing integration", rawTask(t, queue.TypeEvaluateAlerts, queue.EvaluateAlertsPayload{Start: windowStart, End: windowEnd})},
		{"inverted window", rawTask(t, queue.TypeEvaluateAlerts, queue.EvaluateAlertsPayload{IntegrationID: "int-1", Start: windowEnd, End: windowStart})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.handleEvaluateAlerts(context.Background(), tt.task)
			require.Error(t, err)
			assert.ErrorIs(t, err, asynq.SkipRetry)
		})
	}
}

func TestHandleArchiveExport(t *testing.T) {
	archive := &fakeArchive{}
	w := &Worker{archive: archive}

	task, err := queue.NewArchiveExportTask(queue.ArchiveExportPayload{
		ExportID: "exp-1", IntegrationID: "int-1", Start: windowStart, End: windowEnd,
	})
	require.NoError(t, err)

	require.NoError(t, w.handleArchiveExport(context.Background(), task))
	assert.Equal(t, 1, archive.calls)
	assert.Equal(t, "exp-1", archive.exportID)
}

func TestHandleArchiveExport_MissingExportID(t *testing.T) {
	archive := &fakeArchive{}
	w := &Worker{archive: archive}

	task := rawTask(t, queue.TypeArchiveExport, queue.ArchiveExportPayload{
		IntegrationID: "int-1", Start: windowStart, End: windowEnd,
	})

	err := w.handleArchiveExport(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, archive.calls)
}

func TestHandleArchiveExport_UploadError(t *testing.T) {
	boom := errors.New("s3 unavailable")
	w := &Worker{archive: &fakeArchive{err: boom}}

	task, err := queue.NewArchiveExportTask(queue.ArchiveExportPayload{
		ExportID: "exp-1", IntegrationID: "int-1", Start: windowStart, End: windowEnd,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, w.handleArchiveExport(context.Background(), task), boom)
}
