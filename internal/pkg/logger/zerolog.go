package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Every line carries the service name so the
// api, worker and scheduler binaries can share one log stream.
func Init(service, environment string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout

	if environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", service).
		Caller().
		Logger().
		Level(level)
}

func WithRequestID(requestID string) *zerolog.Logger {
	l := log.With().Str("request_id", requestID).Logger()
	return &l
}

func WithIntegrationID(integrationID string) *zerolog.Logger {
	l := log.With().Str("integration_id", integrationID).Logger()
	return &l
}

func WithWorkflowID(workflowID string) *zerolog.Logger {
	l := log.With().Str("workflow_id", workflowID).Logger()
	return &l
}

// WithSource tags upstream collaborator logs (analytics, automation).
func WithSource(integrationID, source string) *zerolog.Logger {
	l := log.With().
		Str("integration_id", integrationID).
		Str("source", source).
		Logger()
	return &l
}

func WithTask(taskType, taskID string) *zerolog.Logger {
	l := log.With().Str("task_type", taskType).Str("task_id", taskID).Logger()
	return &l
}
