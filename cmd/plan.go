package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"catalog-bootstrapper/feature/bootstrap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// planCmd prints what a bootstrap would create, without writing.
var planCmd = &cobra.Command{
	Use:   "plan [spec-file]",
	Short: "Show what a bootstrap would create",
	Long: `Fetches the flat areas of the instance and diffs them against the spec.
Topics and items are structural and are not planned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	addRunFlags(planCmd)
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	b := bootstrap.New(bootstrapOptions(cfg, l))
	b.SetSpec(doc)

	summaries, err := b.Plan(ctx)
	if err != nil {
		return err
	}

	total := 0
	for _, s := range summaries {
		if !s.Managed {
			l.Info("Area unmanaged", zap.String("area", s.Area), zap.Int("existing", s.Existing))
			continue
		}
		total += len(s.Missing)
		l.Info("Area plan",
			zap.String("area", s.Area),
			zap.Int("existing", s.Existing),
			zap.Int("missing", len(s.Missing)),
			zap.Strings("create", s.Missing),
		)
	}
	l.Info("Plan complete", zap.Int("creates", total))
	return nil
}
