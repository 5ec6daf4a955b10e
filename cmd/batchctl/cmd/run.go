package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/batchctl/internal/alert"
	"github.com/dbsmedya/batchctl/internal/auditflat"
	"github.com/dbsmedya/batchctl/internal/auditsql"
	"github.com/dbsmedya/batchctl/internal/clock"
	"github.com/dbsmedya/batchctl/internal/config"
	"github.com/dbsmedya/batchctl/internal/lastsuccess"
	"github.com/dbsmedya/batchctl/internal/lock"
	"github.com/dbsmedya/batchctl/internal/logarchive"
	"github.com/dbsmedya/batchctl/internal/logger"
	"github.com/dbsmedya/batchctl/internal/resurrection"
	"github.com/dbsmedya/batchctl/internal/scheduler"
	"github.com/dbsmedya/batchctl/internal/signalmon"
	"github.com/dbsmedya/batchctl/internal/status"
)

const resurrectFlag = "RES.flg"

// runBatch is the root command's RunE: it wires every package into one
// batch run and translates the scheduler's outcome into a process exit
// code, per §6.1/§7.
func runBatch(cmd *cobra.Command, args []string) error {
	configFile := args[0]
	c := clock.New()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	alias := flagAlias
	if alias == "" {
		alias = cfg.BatchName
	}

	logOutput := filepath.Join(cfg.LogFileDirectory, cfg.BatchName+"_BatchMessage.log")
	logLevel := "info"
	if flagDebug {
		logLevel = "debug"
	}
	log, err := logger.New(&logger.LoggingConfig{Level: logLevel, Format: "text", Output: logOutput})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("starting batch", "batch_name", cfg.BatchName, "alias", alias, "config", configFile)

	g, err := buildGraph(cfg, flagInputFormat)
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("process graph validation failed: %w", err)
	}

	processNames, err := g.LaunchOrder()
	if err != nil {
		return fmt.Errorf("failed to compute launch order: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("received shutdown signal; engine will drain its current tick")
		cancel()
	}()

	batchLock := lock.NewBatchLock(cfg.BfLockFileDirectory, cfg.BatchName)
	if err := batchLock.AcquireOrFail(ctx); err != nil {
		return fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	defer batchLock.ReleaseLock(context.Background())

	batchAuditPath := filepath.Join(cfg.LogFileDirectory, cfg.BatchName+"_BatchAudit.log")
	processAuditPath := filepath.Join(cfg.LogFileDirectory, cfg.BatchName+"_ProcessAudit.log")
	batchHistoryPath := filepath.Join(cfg.LogFileDirectory, cfg.BatchName+"_BatchHistory.log")

	signalMon := signalmon.New(cfg.PollFileDirectory)
	resurrectRequested := flagResurrect || fileExists(filepath.Join(cfg.PollFileDirectory, resurrectFlag))

	batchNumber := flagBatchNumber
	runNumber := 1
	store := status.New(processNames)

	if resurrectRequested {
		plan, err := resurrection.Plan(processAuditPath, processNames)
		if err != nil {
			return fmt.Errorf("failed to build resurrection plan: %w", err)
		}
		if plan.Resurrected {
			prior, err := auditflat.ReadBatchAudit(batchAuditPath)
			if err != nil {
				return fmt.Errorf("failed to read prior batch audit for resurrection: %w", err)
			}
			if prior == nil {
				return fmt.Errorf("resurrection requested but no prior batch audit file found")
			}
			if batchNumber == "" {
				batchNumber = prior.BatchNumber
			}
			runNumber = plan.BatchRunNumber
			plan.ApplyTo(store)
			log.Infow("resurrecting batch", "batch_number", batchNumber, "run_number", runNumber)
		} else {
			log.Info("resurrection requested but last run fully succeeded; starting a fresh batch")
		}
	}

	if batchNumber == "" {
		allocator := lock.NewAllocator(cfg.BfLockFileDirectory, c)
		batchNumber, err = allocator.Allocate(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate batch number: %w", err)
		}
	}

	batchType := flagBatchType
	if batchType == "" {
		if os.Getenv("RUN_BY_CRON") == "TRUE" {
			batchType = "AUTO"
		} else {
			batchType = "MANUAL"
		}
	}

	processDate := flagProcessDate
	if processDate == "" {
		processDate = c.NowString()
	}

	var auditUpdater *auditsql.Updater
	if cfg.PerformAuditTableUpdates {
		auditUpdater, err = auditsql.Connect(ctx, cfg.BfConnectString)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
	}

	lastSuccess, err := lastsuccess.Resolve(ctx, cfg.PerformAuditTableUpdates, auditUpdater, cfg.ApplicationName, cfg.BatchName, batchHistoryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve last successful run: %w", err)
	}

	var mailer *alert.Mailer
	if cfg.SendFailureMessage {
		mailer = alert.NewMailer("localhost:25", cfg.ApplicationName+"@localhost")
	}

	var loadThrottle *scheduler.LoadThrottle
	if cfg.MaxLoadAverage > 0 {
		loadThrottle = scheduler.NewLoadThrottle(cfg.MaxLoadAverage)
	}

	var boardWriter io.Writer
	if flagBoard {
		boardWriter = cmd.OutOrStdout()
	}

	engine := &scheduler.Engine{
		Clock:  c,
		Logger: log.WithBatch(batchNumber),
		Graph:  g,
		Store:  store,
		Meta: scheduler.BatchMetadata{
			ApplicationName: cfg.ApplicationName,
			BatchName:       cfg.BatchName,
			BatchAlias:      alias,
			BatchType:       batchType,
			BatchNumber:     batchNumber,
			RunNumber:       runNumber,
			ProcessDate:     processDate,
		},
		BinDir:                   cfg.BinFileDirectory,
		LogDir:                   cfg.LogFileDirectory,
		PollDir:                  cfg.PollFileDirectory,
		TestMode:                 flagTestMode || signalMon.TestModeRequested(),
		MaxParallelJobs:          cfg.MaxParallelJobs,
		JobPollInterval:          time.Duration(cfg.JobPollInterval) * time.Second,
		AuditTableUpdateInterval: time.Duration(cfg.AuditTableUpdateInterval) * time.Second,
		PerformAuditTableUpdates: cfg.PerformAuditTableUpdates,
		AuditCriticality:         auditsql.Criticality(cfg.AuditTableCriticality),
		AuditUpdater:             auditUpdater,
		SendFailureMessage:       cfg.SendFailureMessage,
		AlertEMailList:           cfg.AlertEMailList,
		Mailer:                   mailer,
		SignalMon:                signalMon,
		LoadThrottle:             loadThrottle,
		LaunchEnv:                append(lastsuccess.EnvVars(lastSuccess), envVars(cfg, batchNumber, runNumber, processDate)...),
		BatchAuditPath:           batchAuditPath,
		ProcessAuditPath:         processAuditPath,
		BatchHistoryPath:         batchHistoryPath,
		BoardWriter:              boardWriter,
	}

	exitCode, err := engine.Run(ctx)
	if err != nil {
		log.Errorw("batch run ended with an error", "error", err)
	}

	if archiveErr := logarchive.Archive(cfg.LogFileDirectory, batchNumber, runNumber); archiveErr != nil {
		log.Warnw("failed to archive log directory", "error", archiveErr)
	} else if pruneErr := logarchive.Prune(cfg.LogFileDirectory, cfg.MaxArchivedLogs); pruneErr != nil {
		log.Warnw("failed to prune archived logs", "error", pruneErr)
	}

	os.Exit(exitCode)
	return nil
}

// envVars renders the batch-identity environment exported to every
// launched job, per §6.5.
func envVars(cfg *config.Config, batchNumber string, runNumber int, processDate string) []string {
	return []string{
		fmt.Sprintf("BatchName=%s", cfg.BatchName),
		fmt.Sprintf("BatchNumber=%s", batchNumber),
		fmt.Sprintf("RunNumber=%d", runNumber),
		fmt.Sprintf("ProcessDate=%s", processDate),
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
