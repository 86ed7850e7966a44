package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/maint"
)

// NewHelpersCmd создаёт группу команд для отчётов и массового обслуживания.
func NewHelpersCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "helpers",
		Short: "Reports and bulk maintenance",
	}

	cmd.AddCommand(
		newSystemInfoCmd(sessionFn, outputFn),
		newPluginReportCmd(sessionFn, outputFn, "used-plugins", "List plugins used by at least one device", maint.UsedPlugins),
		newPluginReportCmd(sessionFn, outputFn, "installed-plugins", "List installed plugins", maint.InstalledPlugins),
		newPluginReportCmd(sessionFn, outputFn, "unused-plugins", "List installed plugins no device uses", maint.UnusedPlugins),
		newPluginReportCmd(sessionFn, outputFn, "missing-plugins", "List plugins used by devices but not installed", maint.MissingPlugins),
		newMassUpdatePluginCmd(sessionFn, outputFn),
		newMassSynchronizeCmd(sessionFn, outputFn),
		newRemoveTransientConfigsCmd(sessionFn, outputFn),
		newTestConnectivityCmd(sessionFn, outputFn),
		newScheduleCmd(sessionFn, outputFn),
	)

	return cmd
}

func newSystemInfoCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "system-info",
		Short: "Count devices, configs and installed plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			info, err := systemInfo(cmd.Context(), s, detailed)
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(info)
				return nil
			}
			_, err = info.WriteTo(out.Writer())
			return err
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Also list the IDs")

	return cmd
}

func systemInfo(ctx context.Context, s *admin.Session, detailed bool) (maint.Info, error) {
	if detailed {
		return maint.DetailedSystemInfo(ctx, s)
	}
	return maint.SystemInfo(ctx, s)
}

func newPluginReportCmd(sessionFn SessionFunc, outputFn func() *Output, use, short string,
	report func(context.Context, *admin.Session) ([]string, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			plugins, err := report(cmd.Context(), s)
			if err != nil {
				return err
			}

			outputFn().List(plugins)
			return nil
		},
	}
}

func newMassUpdatePluginCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var (
		synchronize bool
		recurse     bool
		confirm     confirmFlag
	)

	cmd := &cobra.Command{
		Use:     "mass-update-plugin OLD NEW",
		Short:   "Move every device from one plugin to another",
		Example: `  provd-cli helpers mass-update-plugin xivo-aastra-3.3.1-SP3 xivo-aastra-3.3.1-SP4 --synchronize`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			n, err := maint.MassUpdateDevicesPlugin(cmd.Context(), s, args[0], args[1], synchronize, recurse, confirm.confirm(cmd))
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("%d devices updated", n))
			return nil
		},
	}

	cmd.Flags().BoolVar(&synchronize, "synchronize", false, "Synchronize each updated device")
	cmd.Flags().BoolVar(&recurse, "recurse", false, "Include devices of sub-tenants")
	confirm.bind(cmd)

	return cmd
}

func newMassSynchronizeCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var (
		recurse bool
		confirm confirmFlag
	)

	cmd := &cobra.Command{
		Use:   "mass-synchronize",
		Short: "Synchronize every device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := confirm.ask(cmd, "Synchronize ALL devices?"); err != nil {
				return err
			}

			n, err := maint.MassSynchronize(cmd.Context(), s, recurse)
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("%d devices synchronized", n))
			return nil
		},
	}

	cmd.Flags().BoolVar(&recurse, "recurse", false, "Include devices of sub-tenants")
	confirm.bind(cmd)
	return cmd
}

func newRemoveTransientConfigsCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-transient-configs",
		Short: "Remove transient configs no device uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			n, err := maint.RemoveTransientConfigs(cmd.Context(), s)
			if err != nil {
				return err
			}

			if out := outputFn(); out.JSONMode() {
				out.JSON(map[string]int{"removed": n})
			}
			return nil
		},
	}
}

func newTestConnectivityCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connectivity",
		Short: "Check that the provd server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := s.TestConnectivity(cmd.Context()); err != nil {
				return err
			}

			outputFn().Success("provd server is reachable")
			return nil
		},
	}
}

func newScheduleCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var (
		cronExpr string
		timezone string
		preview  int
	)

	cmd := &cobra.Command{
		Use:   "schedule JOB",
		Short: "Run a maintenance job on a cron schedule until interrupted",
		Long:  "Run a maintenance job on a cron schedule until interrupted.\n\nJobs: " + strings.Join(maint.JobNames(), ", "),
		Example: `  provd-cli helpers schedule remove-transient-configs --cron "0 3 * * *"
  provd-cli helpers schedule mass-synchronize --cron @weekly --timezone Europe/Paris
  provd-cli helpers schedule update-plugins --cron "*/30 * * * *" --preview 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if preview > 0 {
				return previewRuns(outputFn(), cronExpr, timezone, preview)
			}

			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			scheduler, err := maint.NewScheduler(maint.SchedulerConfig{
				Session:  s,
				Job:      args[0],
				Expr:     cronExpr,
				Timezone: timezone,
			})
			if err != nil {
				return err
			}

			return scheduler.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (5 fields or @descriptor)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone of the expression (default: local)")
	cmd.Flags().IntVar(&preview, "preview", 0, "Print the next N run times and exit")
	cmd.MarkFlagRequired("cron")

	return cmd
}

// previewRuns печатает ближайшие n запусков без подключения к серверу.
func previewRuns(out *Output, expr, timezone string, n int) error {
	loc := time.Local
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
	}

	runs := make([]string, 0, n)
	next := time.Now().In(loc)
	for range n {
		var err error
		next, err = maint.NextRun(expr, next)
		if err != nil {
			return err
		}
		runs = append(runs, next.Format(time.RFC3339))
	}

	out.List(runs)
	return nil
}
