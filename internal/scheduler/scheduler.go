// Package scheduler implements the tick-driven engine loop that launches,
// polls, and accounts for a batch's processes, per §4.14 — the heart of
// the system. Shaped after the teacher's archiver.Execute batch loop
// (internal/archiver/orchestrator.go): a single control thread driving
// fetch/process/sleep, here retargeted to launch/poll/sleep over a
// dependency-ordered process list instead of root-ID batches.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dbsmedya/batchctl/internal/alert"
	"github.com/dbsmedya/batchctl/internal/auditflat"
	"github.com/dbsmedya/batchctl/internal/auditsql"
	"github.com/dbsmedya/batchctl/internal/board"
	"github.com/dbsmedya/batchctl/internal/clock"
	"github.com/dbsmedya/batchctl/internal/executor"
	"github.com/dbsmedya/batchctl/internal/graph"
	"github.com/dbsmedya/batchctl/internal/logger"
	"github.com/dbsmedya/batchctl/internal/signalmon"
	"github.com/dbsmedya/batchctl/internal/status"
)

// Exit codes, per §4.14/§7.
const (
	ExitSuccess            = 0
	ExitPreLoopInitError   = 1
	ExitCriticalError      = 2
	ExitStoppedWithWaiting = 5
	ExitJobFailed          = 6
)

// BatchMetadata carries the fields every audit write needs, fixed for the
// lifetime of one batch run.
type BatchMetadata struct {
	ApplicationName string
	BatchName       string
	BatchAlias      string
	BatchType       string
	BatchNumber     string
	RunNumber       int
	ProcessDate     string
}

// Engine drives one batch run's scheduler loop.
type Engine struct {
	Clock  clock.Clock
	Logger *logger.Logger

	Graph *graph.Graph
	Store *status.Store

	Meta BatchMetadata

	BinDir  string
	LogDir  string
	PollDir string

	TestMode        bool
	MaxParallelJobs int

	JobPollInterval          time.Duration
	AuditTableUpdateInterval time.Duration
	PerformAuditTableUpdates bool
	AuditCriticality         auditsql.Criticality
	AuditUpdater             *auditsql.Updater

	SendFailureMessage bool
	AlertEMailList     string
	Mailer             *alert.Mailer

	SignalMon    *signalmon.Monitor
	LoadThrottle *LoadThrottle

	LaunchEnv []string

	BatchAuditPath   string
	ProcessAuditPath string
	BatchHistoryPath string

	// BoardWriter, when set, receives a redrawn status board after every
	// tick — the live operator view board.Render produces.
	BoardWriter io.Writer

	runOrderCounter int
	auditDisabled   bool
	lastAuditUpdate time.Time
}

// predecessorsSuccessful reports whether every predecessor of name has
// reached SUCCESSFUL.
func (e *Engine) predecessorsSuccessful(name string) bool {
	for _, parent := range e.Graph.GetParents(name) {
		rec := e.Store.Get(parent)
		if rec == nil || rec.Status != status.Successful {
			return false
		}
	}
	return true
}

func (e *Engine) kindFor(name string) executor.Kind {
	if e.TestMode {
		return executor.TestMode
	}
	node := e.Graph.GetNode(name)
	if node != nil && node.IsMilestone {
		return executor.Milestone
	}
	return executor.Real
}

// launchPhase launches every eligible WAITING process, in Store natural
// order, per §4.14 step 4.
func (e *Engine) launchPhase(ctx context.Context, nowEndTime string, runningCount *int) {
	for _, name := range e.Store.Names() {
		rec := e.Store.Get(name)
		if rec.Status != status.Waiting {
			continue
		}
		if e.Store.AnyFailed() {
			break
		}
		if e.MaxParallelJobs > 0 && *runningCount >= e.MaxParallelJobs {
			break
		}
		if !e.predecessorsSuccessful(name) {
			continue
		}

		if e.LoadThrottle != nil {
			if err := e.LoadThrottle.Wait(ctx); err != nil {
				e.Logger.Warnw("load throttle wait interrupted", "process", name, "error", err)
				return
			}
		}

		kind := e.kindFor(name)
		logPath := fmt.Sprintf("%s/%s.log", e.LogDir, name)
		configFile := fmt.Sprintf("%s.cfg", e.Meta.BatchName)

		handle, err := executor.Launch(ctx, kind, e.BinDir, name, configFile, logPath, e.LaunchEnv)
		if err != nil {
			e.Logger.Errorw("failed to launch process", "process", name, "error", err)
			rec.Status = status.Failed
			rec.EndTime = nowEndTime
			e.sendFailureAlert(name, logPath)
			continue
		}

		e.runOrderCounter++
		rec.Handle = handle
		rec.PID = handle.PID()
		rec.Status = status.Running
		rec.StartTime = nowEndTime
		rec.RunOrder = e.runOrderCounter
		*runningCount++

		e.Logger.Infow("launched process", "process", name, "pid", rec.PID, "run_order", rec.RunOrder)
	}
}

// pollPhase advances every RUNNING process, per §4.14 step 5.
func (e *Engine) pollPhase(nowEndTime string) {
	for _, name := range e.Store.Names() {
		rec := e.Store.Get(name)
		if rec.Status != status.Running {
			continue
		}
		handle, ok := rec.Handle.(*executor.Handle)
		if !ok || handle == nil {
			continue
		}

		running, succeeded, err := handle.Poll()
		if err != nil {
			e.Logger.Errorw("error polling process", "process", name, "error", err)
			continue
		}
		if running {
			continue
		}

		rec.EndTime = nowEndTime
		if succeeded {
			rec.Status = status.Successful
			e.Logger.Infow("process succeeded", "process", name)
		} else {
			rec.Status = status.Failed
			e.Logger.Warnw("process failed", "process", name)
			e.sendFailureAlert(name, fmt.Sprintf("%s/%s.log", e.LogDir, name))
		}
	}
}

func (e *Engine) sendFailureAlert(processName, logPath string) {
	if !e.SendFailureMessage || e.AlertEMailList == "" || e.Mailer == nil {
		return
	}
	f := alert.Failure{
		ApplicationName: e.Meta.ApplicationName,
		BatchName:       e.Meta.BatchName,
		BatchNumber:     e.Meta.BatchNumber,
		ProcessName:     processName,
		JobPath:         fmt.Sprintf("%s/%s", e.BinDir, processName),
		LogPath:         logPath,
	}
	if err := e.Mailer.Send(f, e.AlertEMailList); err != nil {
		e.Logger.Warnw("failed to send failure alert", "process", processName, "error", err)
	}
}

// batchStatus derives the batch's aggregate status: RUNNING if any process
// is running, else WAITING — terminal statuses are set by the caller once
// the loop decides to stop, per §4.14 step 6.
func (e *Engine) batchStatus() status.Code {
	if e.Store.RunningCount() > 0 {
		return status.Running
	}
	return status.Waiting
}

func (e *Engine) writeAudits(nowEndTime string, batchStatus status.Code) (auditflat.BatchRecord, error) {
	batchRecord := auditflat.BatchRecord{
		BatchNumber: e.Meta.BatchNumber,
		RunNumber:   e.Meta.RunNumber,
		BatchName:   e.Meta.BatchName,
		ProcessDate: e.Meta.ProcessDate,
		BatchStatus: batchStatus,
		StartTime:   e.Meta.ProcessDate,
		EndTime:     nowEndTime,
		BatchType:   e.Meta.BatchType,
		BatchAlias:  e.Meta.BatchAlias,
	}
	if err := auditflat.WriteBatchAudit(e.BatchAuditPath, batchRecord); err != nil {
		return batchRecord, fmt.Errorf("failed to write batch audit file: %w", err)
	}

	var processRecords []auditflat.ProcessRecord
	for _, rec := range e.Store.InOrder() {
		processRecords = append(processRecords, auditflat.ProcessRecord{
			BatchNumber:   e.Meta.BatchNumber,
			RunNumber:     rec.RunNumber,
			ProcessName:   rec.Name,
			ProcessStatus: rec.Status,
			StartTime:     rec.StartTime,
			EndTime:       rec.EndTime,
		})
	}
	if err := auditflat.WriteProcessAudit(e.ProcessAuditPath, processRecords); err != nil {
		return batchRecord, fmt.Errorf("failed to write process audit file: %w", err)
	}

	return batchRecord, nil
}

// updateAuditTable mirrors the flat audit state into the audit tables, at
// most once per AuditTableUpdateInterval, honoring the WARN/ERROR
// criticality policy from §4.9.
func (e *Engine) updateAuditTable(ctx context.Context, nowEndTime string, batchRecord auditflat.BatchRecord, retryRequested bool, force bool) error {
	if retryRequested && e.auditDisabled {
		e.auditDisabled = false
		e.Logger.Info("audit table updates re-enabled by RETRY.flg")
	}

	if !e.PerformAuditTableUpdates || e.AuditUpdater == nil || e.auditDisabled {
		return nil
	}
	if !force && e.Clock.ElapsedSeconds(e.lastAuditUpdate) < e.AuditTableUpdateInterval.Seconds() {
		return nil
	}

	err := e.doAuditTableUpdate(ctx, nowEndTime, batchRecord)
	if err == nil {
		e.lastAuditUpdate = e.Clock.Now()
		return nil
	}

	if e.AuditCriticality == auditsql.CriticalityError {
		return fmt.Errorf("fatal: audit table update failed: %w", err)
	}

	e.Logger.Warnw("audit table update failed; disabling further updates until RETRY.flg", "error", err)
	e.auditDisabled = true
	return nil
}

func (e *Engine) doAuditTableUpdate(ctx context.Context, heartbeat string, batchRecord auditflat.BatchRecord) error {
	row := auditsql.BatchRow{
		SystemName:  e.Meta.ApplicationName,
		BatchNumber: batchRecord.BatchNumber,
		RunNumber:   batchRecord.RunNumber,
		BatchName:   batchRecord.BatchName,
		ProcessDate: batchRecord.ProcessDate,
		BatchStatus: batchRecord.BatchStatus,
		StartTime:   batchRecord.StartTime,
		EndTime:     batchRecord.EndTime,
		BatchType:   batchRecord.BatchType,
		BatchAlias:  batchRecord.BatchAlias,
	}
	if err := e.AuditUpdater.UpsertBatch(ctx, row, heartbeat); err != nil {
		return err
	}
	if match, err := e.AuditUpdater.ReconcileBatch(ctx, row); err != nil {
		e.Logger.Warnw("batch audit reconciliation failed", "error", err)
	} else if !match {
		e.Logger.Warnw("batch audit row mismatch on reconciliation", "batch_number", row.BatchNumber, "run_number", row.RunNumber, "expected_status", row.BatchStatus)
	}

	for _, rec := range e.Store.InOrder() {
		prow := auditsql.ProcessRow{
			SystemName:    e.Meta.ApplicationName,
			BatchNumber:   e.Meta.BatchNumber,
			ProcessName:   rec.Name,
			RunNumber:     rec.RunNumber,
			BatchName:     e.Meta.BatchName,
			ProcessStatus: rec.Status,
			StartTime:     rec.StartTime,
			EndTime:       rec.EndTime,
		}
		if err := e.AuditUpdater.UpsertProcess(ctx, prow); err != nil {
			return err
		}
		if match, err := e.AuditUpdater.ReconcileProcess(ctx, prow); err != nil {
			e.Logger.Warnw("process audit reconciliation failed", "process", rec.Name, "error", err)
		} else if !match {
			e.Logger.Warnw("process audit row mismatch on reconciliation", "process", rec.Name, "expected_status", rec.Status)
		}
	}
	return nil
}

// TickResult reports the outcome of one scheduler.Tick call.
type TickResult struct {
	Done        bool
	ExitCode    int
	BatchRecord auditflat.BatchRecord
}

// Tick performs exactly one scheduler iteration (§4.14 steps 1-8), given
// the shared timestamp for every write this tick. It contains the engine's
// entire decision logic and is the unit tests drive directly, without
// waiting on the real outer sleep that Run layers on top.
func (e *Engine) Tick(ctx context.Context, nowEndTime string) (TickResult, error) {
	state, pauseEntered, pauseExited, stopEntered := e.SignalMon.Poll()
	if pauseEntered {
		e.Logger.Info("entering pause mode")
	}
	if pauseExited {
		e.Logger.Info("exiting pause mode")
	}
	if stopEntered {
		e.Logger.Warn("entering stop mode")
	}

	runningCount := e.Store.RunningCount()

	if !state.Paused && !state.Stopped {
		e.launchPhase(ctx, nowEndTime, &runningCount)
	}

	e.pollPhase(nowEndTime)

	if e.BoardWriter != nil {
		fmt.Fprintln(e.BoardWriter, board.Render(e.Store))
	}

	batchStatus := e.batchStatus()
	batchRecord, err := e.writeAudits(nowEndTime, batchStatus)
	if err != nil {
		return TickResult{Done: true, ExitCode: ExitCriticalError, BatchRecord: batchRecord}, err
	}

	if err := e.updateAuditTable(ctx, nowEndTime, batchRecord, state.RetryRequested, false); err != nil {
		return TickResult{Done: true, ExitCode: ExitCriticalError, BatchRecord: batchRecord}, err
	}

	anyFailed := e.Store.AnyFailed()
	waitingCount := 0
	for _, rec := range e.Store.InOrder() {
		if rec.Status == status.Waiting {
			waitingCount++
		}
	}
	nowRunning := e.Store.RunningCount()

	switch {
	case !anyFailed && nowRunning == 0 && waitingCount == 0:
		return TickResult{Done: true, ExitCode: ExitSuccess, BatchRecord: batchRecord}, nil
	case !anyFailed && waitingCount > 0 && nowRunning == 0 && state.Stopped:
		return TickResult{Done: true, ExitCode: ExitStoppedWithWaiting, BatchRecord: batchRecord}, nil
	case anyFailed && nowRunning == 0:
		return TickResult{Done: true, ExitCode: ExitJobFailed, BatchRecord: batchRecord}, nil
	default:
		return TickResult{Done: false, BatchRecord: batchRecord}, nil
	}
}

// Run drives the scheduler loop to completion: a 1-second outer sleep,
// gating full ticks on JobPollInterval, per §4.14's opening paragraph.
// Returns the process exit code.
func (e *Engine) Run(ctx context.Context) (int, error) {
	lastTick := e.Clock.Now().Add(-e.JobPollInterval)

	var final TickResult
	for {
		select {
		case <-ctx.Done():
			return ExitCriticalError, ctx.Err()
		default:
		}

		if e.Clock.ElapsedSeconds(lastTick) < e.JobPollInterval.Seconds() {
			select {
			case <-ctx.Done():
				return ExitCriticalError, ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		lastTick = e.Clock.Now()

		result, err := e.Tick(ctx, e.Clock.NowString())
		if err != nil {
			return result.ExitCode, err
		}
		if result.Done {
			final = result
			break
		}
	}

	final.BatchRecord.BatchStatus = status.Waiting
	if final.ExitCode == ExitSuccess {
		final.BatchRecord.BatchStatus = status.Successful
	} else if final.ExitCode == ExitJobFailed {
		final.BatchRecord.BatchStatus = status.Failed
	}
	final.BatchRecord.EndTime = e.Clock.NowString()

	if err := auditflat.WriteBatchAudit(e.BatchAuditPath, final.BatchRecord); err != nil {
		return ExitCriticalError, fmt.Errorf("failed to write final batch audit: %w", err)
	}
	if err := auditflat.AppendBatchHistory(e.BatchHistoryPath, final.BatchRecord); err != nil {
		return ExitCriticalError, fmt.Errorf("failed to append batch history: %w", err)
	}
	if err := e.updateAuditTable(ctx, final.BatchRecord.EndTime, final.BatchRecord, false, true); err != nil {
		return ExitCriticalError, err
	}

	return final.ExitCode, nil
}
