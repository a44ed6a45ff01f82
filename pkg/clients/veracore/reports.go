package veracore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/domain/models"
)

// ReportState classifies the backend's report task status strings.
type ReportState int

const (
	StateProcessing ReportState = iota
	StateDone
	StateTooLarge
	StateUnknown
)

const (
	statusDone       = "Done"
	statusProcessing = "Processing"
	statusTooLarge   = "Request too Large"
)

func mapReportStatus(raw string) ReportState {
	switch raw {
	case statusDone:
		return StateDone
	case statusProcessing:
		return StateProcessing
	case statusTooLarge:
		return StateTooLarge
	default:
		return StateUnknown
	}
}

// ReportAPI is the slice of Client the runner needs; narrowed for tests.
type ReportAPI interface {
	SubmitReport(ctx context.Context, reportName string, filters []ReportFilter) (string, error)
	ReportStatus(ctx context.Context, taskID string) (ReportState, string, error)
	ReportResult(ctx context.Context, taskID string) (models.Table, error)
}

// ReportRunner drives one report task from submission to a materialized
// table: submit, poll with a bounded attempt budget, then fetch.
//
// Terminal states: Done (fetch), TooLarge (fail, no retry), any non-200
// transport response (fail), attempt budget exhausted (timeout). Unknown
// status strings keep polling within the budget.
type ReportRunner struct {
	api      ReportAPI
	attempts int
	interval time.Duration
	sleep    func(time.Duration)
	logger   *zap.Logger
}

// NewReportRunner builds a runner with the given polling budget.
func NewReportRunner(api ReportAPI, attempts int, interval time.Duration, logger *zap.Logger) *ReportRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportRunner{
		api:      api,
		attempts: attempts,
		interval: interval,
		sleep:    time.Sleep,
		logger:   logger,
	}
}

// Run executes the full submit/poll/fetch cycle for one report.
func (r *ReportRunner) Run(ctx context.Context, reportName string, filters []ReportFilter) (models.Table, error) {
	taskID, err := r.api.SubmitReport(ctx, reportName, filters)
	if err != nil {
		return models.Table{}, err
	}

	r.logger.Info("report task submitted",
		zap.String("report", reportName),
		zap.String("task_id", taskID))

	done := false
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Table{}, err
		}

		state, raw, err := r.api.ReportStatus(ctx, taskID)
		if err != nil {
			return models.Table{}, err
		}

		if state == StateDone {
			r.logger.Info("report completed",
				zap.String("report", reportName),
				zap.Int("attempts", attempt))
			done = true
			break
		}

		switch state {
		case StateTooLarge:
			r.logger.Error("report request too large", zap.String("report", reportName))
			return models.Table{}, ErrReportTooLarge
		case StateProcessing:
			r.logger.Debug("report processing",
				zap.String("report", reportName),
				zap.Int("attempt", attempt))
		default:
			// Unknown statuses are not terminal; surface them periodically.
			if attempt%5 == 1 {
				r.logger.Warn("unexpected report status",
					zap.String("report", reportName),
					zap.String("status", raw),
					zap.Int("attempt", attempt))
			}
		}

		r.sleep(r.interval)
	}

	if !done {
		return models.Table{}, &TimeoutError{Report: reportName, TaskID: taskID, Attempts: r.attempts}
	}

	table, err := r.api.ReportResult(ctx, taskID)
	if err != nil {
		return models.Table{}, err
	}

	r.logger.Info("report fetched",
		zap.String("report", reportName),
		zap.Int("rows", len(table.Rows)))

	return table, nil
}
