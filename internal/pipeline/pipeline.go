// Package pipeline orchestrates the core cleaning and validation flow:
// read -> parse -> validate.
//
// The pipeline is single-threaded and synchronous: each stage consumes the
// immutable output of the previous one and runs to completion before any
// consumer (aggregation, enrichment, reporting) sees the result. I/O faults
// abort before parsing; per-record defects never abort - every line is
// processed even when earlier lines were rejected.
//
// Progress callbacks report step-level progress for long-running CLI use:
//
//	p, _ := pipeline.New(nil, nil)
//	p.AddProgressCallback(func(progress *pipeline.Progress) {
//		fmt.Printf("[%d/%d] %s\n", progress.CompletedSteps, progress.TotalSteps, progress.CurrentStep)
//	})
//	result, err := p.Run(ctx, "data/sales_data.txt")
package pipeline

import (
	"context"
	"sync"
	"time"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/internal/parsers"
	"golang-sales-analytics-service/internal/reader"
	"golang-sales-analytics-service/internal/validator"
	"golang-sales-analytics-service/pkg/errors"
	"golang-sales-analytics-service/pkg/logger"
)

// Progress tracks the progress of a pipeline run
type Progress struct {
	TotalSteps      int           `json:"total_steps"`
	CompletedSteps  int           `json:"completed_steps"`
	CurrentStep     string        `json:"current_step"`
	PercentComplete float64       `json:"percent_complete"`
	StartTime       time.Time     `json:"start_time"`
	ElapsedTime     time.Duration `json:"elapsed_time"`

	LinesRead        int `json:"lines_read"`
	RecordsParsed    int `json:"records_parsed"`
	RecordsAccepted  int `json:"records_accepted"`
	RecordsRejected  int `json:"records_rejected"`
}

// ProgressCallback is called to report pipeline progress
type ProgressCallback func(*Progress)

// Summary describes the outcome of a pipeline run. Only counts cross the
// reporting boundary; full rejected records stay in Result for diagnostic
// dumps.
type Summary struct {
	SourceFile       string                         `json:"source_file"`
	TotalLines       int                            `json:"total_lines"`
	RecordsParsed    int                            `json:"records_parsed"`
	AcceptedCount    int                            `json:"accepted_count"`
	RejectedCount    int                            `json:"rejected_count"`
	RejectedByReason map[models.RejectionReason]int `json:"rejected_by_reason"`
	Duration         time.Duration                  `json:"duration"`
}

// Result holds the output of a pipeline run
type Result struct {
	Accepted []*models.Transaction `json:"accepted"`
	Rejected []validator.Rejection `json:"rejected"`
	Summary  Summary               `json:"summary"`
}

// Pipeline runs the read -> parse -> validate flow
type Pipeline struct {
	reader    *reader.Reader
	parser    *parsers.RecordParser
	validator *validator.Validator
	logger    logger.Logger

	progressCallbacks []ProgressCallback
	currentProgress   *Progress
	progressMutex     sync.Mutex
}

// New creates a Pipeline. Nil configs select the defaults.
func New(readerConfig *reader.Config, schemaConfig *parsers.SchemaConfig) (*Pipeline, error) {
	r, err := reader.NewReader(readerConfig)
	if err != nil {
		return nil, err
	}

	p, err := parsers.NewRecordParser(schemaConfig)
	if err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("pipeline")
	log.Debug("Created pipeline")

	return &Pipeline{
		reader:    r,
		parser:    p,
		validator: validator.NewValidator(),
		logger:    log,
	}, nil
}

// AddProgressCallback registers a callback for progress updates
func (p *Pipeline) AddProgressCallback(callback ProgressCallback) {
	p.progressMutex.Lock()
	defer p.progressMutex.Unlock()
	p.progressCallbacks = append(p.progressCallbacks, callback)
}

// Run executes the pipeline against the file at path. I/O faults propagate;
// malformed content never does.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	p.initProgress(start)

	p.logger.WithField("file_path", path).Info("Pipeline started")

	// Step 1: read
	p.updateProgress("reading sales data", 0)
	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "pipeline_read", err)
	}

	lines, err := p.reader.ReadLines(path)
	if err != nil {
		p.logger.WithError(err).Error("Pipeline aborted during read")
		return nil, err
	}
	p.setCounts(func(pr *Progress) { pr.LinesRead = len(lines) })

	// Step 2: parse
	p.updateProgress("parsing records", 1)
	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "pipeline_parse", err)
	}

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "parse_records",
		Total:     int64(len(lines)),
		Logger:    p.logger,
	})
	records := p.parser.ParseLines(lines)
	tracker.Add(int64(len(records)))
	tracker.Complete()

	p.setCounts(func(pr *Progress) { pr.RecordsParsed = len(records) })

	// Step 3: validate
	p.updateProgress("validating records", 2)
	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "pipeline_validate", err)
	}

	accepted, rejected := p.validator.Validate(records)
	p.setCounts(func(pr *Progress) {
		pr.RecordsAccepted = len(accepted)
		pr.RecordsRejected = len(rejected)
	})

	p.updateProgress("completed", 3)

	result := &Result{
		Accepted: accepted,
		Rejected: rejected,
		Summary: Summary{
			SourceFile:       path,
			TotalLines:       len(lines),
			RecordsParsed:    len(records),
			AcceptedCount:    len(accepted),
			RejectedCount:    len(rejected),
			RejectedByReason: validator.SummarizeRejections(rejected),
			Duration:         time.Since(start),
		},
	}

	p.logger.WithFields(logger.Fields{
		"file_path": path,
		"lines":     result.Summary.TotalLines,
		"accepted":  result.Summary.AcceptedCount,
		"rejected":  result.Summary.RejectedCount,
		"duration":  result.Summary.Duration.String(),
	}).Info("Pipeline completed")

	return result, nil
}

func (p *Pipeline) initProgress(start time.Time) {
	p.progressMutex.Lock()
	defer p.progressMutex.Unlock()

	p.currentProgress = &Progress{
		TotalSteps: 3,
		StartTime:  start,
	}
}

func (p *Pipeline) updateProgress(step string, completed int) {
	p.progressMutex.Lock()

	p.currentProgress.CurrentStep = step
	p.currentProgress.CompletedSteps = completed
	p.currentProgress.PercentComplete = float64(completed) / float64(p.currentProgress.TotalSteps) * 100
	p.currentProgress.ElapsedTime = time.Since(p.currentProgress.StartTime)

	snapshot := *p.currentProgress
	callbacks := p.progressCallbacks

	p.progressMutex.Unlock()

	for _, callback := range callbacks {
		callback(&snapshot)
	}
}

func (p *Pipeline) setCounts(update func(*Progress)) {
	p.progressMutex.Lock()
	defer p.progressMutex.Unlock()
	update(p.currentProgress)
}
