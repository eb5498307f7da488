package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/feature/bootstrap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	specKey        string
	instanceFlag   string
	workersFlag    int
	multilingual   bool
	referenceCache bool
	itemTopics     string
	itemPublish    string
	writeReport    bool
)

// bootstrapCmd runs one reconciliation of a spec.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap [spec-file]",
	Short: "Reconcile an instance with a spec",
	Long: `Reads a spec document (JSON or YAML) and creates everything the instance is missing.

Examples:
  # Local spec
  bootstrap shop.yaml --instance my-shop

  # Spec stored in the bucket, write the run report next to it
  bootstrap --key shops/demo.json --report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBootstrap,
}

func init() {
	addRunFlags(bootstrapCmd)
	bootstrapCmd.Flags().BoolVar(&writeReport, "report", false, "Write the run report to the storage bucket")
	RootCmd.AddCommand(bootstrapCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringVar(&specKey, "key", "", "Read the spec from the storage bucket")
	c.Flags().StringVar(&instanceFlag, "instance", "", "Target instance identifier (overrides API_INSTANCE)")
	c.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent requests per endpoint (overrides RUN_MAX_WORKERS)")
	c.Flags().BoolVar(&multilingual, "multilingual", false, "Write item names in every instance language")
	c.Flags().BoolVar(&referenceCache, "reference-cache", false, "Cache item and topic lookups for the whole run")
	c.Flags().StringVar(&itemTopics, "item-topics", "", "Topic merge mode for items (amend, replace)")
	c.Flags().StringVar(&itemPublish, "item-publish", "", "Publish mode for items (auto, publish, draft)")
}

func applyRunFlags(c *cobra.Command, run *bootstrap.Config, api *bootstrap.APIConfig) error {
	if instanceFlag != "" {
		api.Instance = instanceFlag
	}
	if workersFlag > 0 {
		run.MaxWorkers = workersFlag
	}
	if c.Flags().Changed("multilingual") {
		run.Multilingual = multilingual
	}
	if c.Flags().Changed("reference-cache") {
		run.UseReferenceCache = referenceCache
	}
	if itemTopics != "" {
		run.ItemTopics = itemTopics
	}
	if itemPublish != "" {
		run.ItemPublish = itemPublish
	}
	if !run.IsValid() {
		return fmt.Errorf("invalid run flags: item-topics=%q item-publish=%q", run.ItemTopics, run.ItemPublish)
	}
	return nil
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, l, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	if err := applyRunFlags(cmd, &cfg.Run, &cfg.API); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file := ""
	if len(args) > 0 {
		file = args[0]
	}
	doc, err := loadSpec(ctx, cfg, file, specKey)
	if err != nil {
		return err
	}

	journal := openJournal(cfg.Database, l)
	runID := ""
	if journal != nil {
		run, err := journal.StartRun(ctx, cfg.API.Instance, specKey)
		if err != nil {
			l.Warn("Failed to record run start", zap.Error(err))
			journal = nil
		} else {
			runID = run.ID
			l = logger.WithRun(l, runID, cfg.API.Instance)
		}
	}

	b := bootstrap.New(bootstrapOptions(cfg, l))
	b.SetSpec(doc)

	events, cancel := b.Subscribe(64)
	logged := make(chan struct{})
	go func() {
		defer close(logged)
		logEvents(l, events)
	}()

	started := time.Now()
	runErr := b.Start(ctx)
	cancel()
	<-logged

	snap := b.Status()
	if journal != nil {
		if err := journal.RecordSnapshot(context.Background(), runID, snap); err != nil {
			l.Warn("Failed to record run status", zap.Error(err))
		}
		if err := journal.FinishRun(context.Background(), runID, time.Now(), time.Since(started), runErr); err != nil {
			l.Warn("Failed to record run end", zap.Error(err))
		}
	}

	if writeReport {
		docs, err := openDocuments(cfg.Storage)
		if err != nil {
			return err
		}
		name := runID
		if name == "" {
			name = started.UTC().Format("20060102T150405Z")
		}
		key := path.Join(cfg.Server.ReportPrefix, name+".json")
		if err := docs.WriteReport(context.Background(), key, snap); err != nil {
			l.Warn("Failed to write run report", zap.Error(err))
		} else {
			l.Info("Run report written", zap.String("key", key))
		}
	}

	printStatus(l, snap)
	return runErr
}

// logEvents logs the progress stream until the subscription closes.
func logEvents(l *zap.Logger, events <-chan bootstrap.Event) {
	for ev := range events {
		switch {
		case ev.Type == bootstrap.EventError:
			l.Error("Run error", zap.String("area", string(ev.Area)), zap.String("error", ev.Message))
		case ev.Type == bootstrap.EventDone:
			l.Info("Run done", zap.Duration("duration", ev.Duration))
		case ev.Warning != nil:
			l.Warn(ev.Warning.Message, zap.String("area", string(ev.Area)), zap.String("cause", ev.Warning.Cause))
		case ev.Type == bootstrap.UpdateEvent(ev.Area) && ev.Message != "":
			fields := []zap.Field{zap.String("area", string(ev.Area))}
			if ev.Progress != nil {
				fields = append(fields, zap.Float64("progress", *ev.Progress))
			}
			l.Debug(ev.Message, fields...)
		case ev.Type == bootstrap.DoneEvent(ev.Area):
			l.Info("Area done", zap.String("area", string(ev.Area)))
		}
	}
}

func printStatus(l *zap.Logger, snap status.Snapshot) {
	for _, a := range status.Areas() {
		st := snap.Area(a)
		l.Info("Area status",
			zap.String("area", string(a)),
			zap.Float64("progress", st.Progress),
			zap.Int("warnings", len(st.Warnings)),
		)
	}
}
