package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/provd"
)

// NewPluginCmd создаёт группу команд для управления плагинами и их пакетами.
func NewPluginCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage plugins",
	}

	cmd.AddCommand(
		newPluginListCmd(sessionFn, outputFn, "installed", "List installed plugins",
			func(ctx context.Context, s *admin.Session, search string) (map[string]provd.Document, error) {
				return s.Plugins.Installed(ctx, search)
			}),
		newPluginListCmd(sessionFn, outputFn, "installable", "List installable plugins",
			func(ctx context.Context, s *admin.Session, search string) (map[string]provd.Document, error) {
				return s.Plugins.Installable(ctx, search)
			}),
		newPluginOpCmd(sessionFn, outputFn, "install", "Install a plugin",
			func(ctx context.Context, s *admin.Session, id string) (admin.Operation, error) {
				return s.Plugins.Install(ctx, id)
			}),
		newPluginOpCmd(sessionFn, outputFn, "upgrade", "Upgrade a plugin",
			func(ctx context.Context, s *admin.Session, id string) (admin.Operation, error) {
				return s.Plugins.Upgrade(ctx, id)
			}),
		newPluginUninstallCmd(sessionFn, outputFn),
		newPluginUninstallAllCmd(sessionFn, outputFn),
		newPluginReloadCmd(sessionFn, outputFn),
		newPluginUpdateCmd(sessionFn, outputFn),
		newPluginCountCmd(sessionFn, outputFn),
		newPackageCmd(sessionFn, outputFn),
	)

	return cmd
}

type listFunc func(ctx context.Context, s *admin.Session, search string) (map[string]provd.Document, error)

func newPluginListCmd(sessionFn SessionFunc, outputFn func() *Output, use, short string, list listFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [SEARCH]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			search := ""
			if len(args) == 1 {
				search = args[0]
			}

			pkgs, err := list(cmd.Context(), s, search)
			if err != nil {
				return err
			}

			outputFn().Print(packageHeaders, packageRows(pkgs), pkgs)
			return nil
		},
	}
}

type opFunc func(ctx context.Context, s *admin.Session, id string) (admin.Operation, error)

func newPluginOpCmd(sessionFn SessionFunc, outputFn func() *Output, use, short string, start opFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			op, err := start(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}

			if op != nil {
				reportPending(out, op)
				return nil
			}
			out.Success(fmt.Sprintf("Plugin %s: %s done", args[0], use))
			return nil
		},
	}
}

func newPluginUninstallCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall ID...",
		Short: "Uninstall plugins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			for _, id := range args {
				if err := s.Plugins.Uninstall(cmd.Context(), id); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Plugin uninstalled: %s", id))
			}
			return nil
		},
	}
}

func newPluginUninstallAllCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var confirm confirmFlag

	cmd := &cobra.Command{
		Use:   "uninstall-all",
		Short: "Uninstall every plugin",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := confirm.ask(cmd, "Uninstall ALL plugins?"); err != nil {
				return err
			}

			n, err := s.Plugins.UninstallAll(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("%d plugins uninstalled", n))
			return nil
		},
	}

	confirm.bind(cmd)
	return cmd
}

func newPluginReloadCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reload ID",
		Short: "Reload a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := s.Plugins.Reload(cmd.Context(), args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Plugin reloaded: %s", args[0]))
			return nil
		},
	}
}

func newPluginUpdateCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the list of installable plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			op, err := s.Plugins.Update(cmd.Context())
			if err != nil {
				return err
			}

			if op != nil {
				reportPending(out, op)
				return nil
			}
			out.Success("Plugin index updated")
			return nil
		},
	}
}

func newPluginCountCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count installed plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			n, err := s.Plugins.CountInstalled(cmd.Context())
			if err != nil {
				return err
			}

			printCount(outputFn(), n)
			return nil
		},
	}
}

func newPackageCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pkg",
		Aliases: []string{"package"},
		Short:   "Manage the packages of a plugin",
	}

	cmd.AddCommand(
		newPackageListCmd(sessionFn, outputFn, "installed", "List installed packages of a plugin",
			func(ctx context.Context, p *admin.Plugin, search string) (map[string]provd.Document, error) {
				return p.Installed(ctx, search)
			}),
		newPackageListCmd(sessionFn, outputFn, "installable", "List installable packages of a plugin",
			func(ctx context.Context, p *admin.Plugin, search string) (map[string]provd.Document, error) {
				return p.Installable(ctx, search)
			}),
		newPackageOpCmd(sessionFn, outputFn, "install", "Install a package",
			func(ctx context.Context, p *admin.Plugin, pkg string) (admin.Operation, error) {
				return p.Install(ctx, pkg)
			}),
		newPackageOpCmd(sessionFn, outputFn, "upgrade", "Upgrade a package",
			func(ctx context.Context, p *admin.Plugin, pkg string) (admin.Operation, error) {
				return p.Upgrade(ctx, pkg)
			}),
		newPackageInstallAllCmd(sessionFn, outputFn),
		newPackageUninstallCmd(sessionFn, outputFn),
		newPackageUninstallAllCmd(sessionFn, outputFn),
	)

	return cmd
}

func newPackageListCmd(sessionFn SessionFunc, outputFn func() *Output, use, short string,
	list func(ctx context.Context, p *admin.Plugin, search string) (map[string]provd.Document, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PLUGIN [SEARCH]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			search := ""
			if len(args) == 2 {
				search = args[1]
			}

			pkgs, err := list(cmd.Context(), s.Plugins.Item(args[0]), search)
			if err != nil {
				return err
			}

			outputFn().Print(packageHeaders, packageRows(pkgs), pkgs)
			return nil
		},
	}
}

func newPackageOpCmd(sessionFn SessionFunc, outputFn func() *Output, use, short string,
	start func(ctx context.Context, p *admin.Plugin, pkg string) (admin.Operation, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PLUGIN PACKAGE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			op, err := start(cmd.Context(), s.Plugins.Item(args[0]), args[1])
			if err != nil {
				return err
			}

			if op != nil {
				reportPending(out, op)
				return nil
			}
			out.Success(fmt.Sprintf("Package %s/%s: %s done", args[0], args[1], use))
			return nil
		},
	}
}

func newPackageInstallAllCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "install-all PLUGIN",
		Short: "Install every installable package of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			pending, err := s.Plugins.Item(args[0]).InstallAll(cmd.Context())
			reportPending(outputFn(), pending...)
			return err
		},
	}
}

func newPackageUninstallCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall PLUGIN PACKAGE...",
		Short: "Uninstall packages of a plugin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			plugin := s.Plugins.Item(args[0])
			for _, pkg := range args[1:] {
				if err := plugin.Uninstall(cmd.Context(), pkg); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Package uninstalled: %s/%s", args[0], pkg))
			}
			return nil
		},
	}
}

func newPackageUninstallAllCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var confirm confirmFlag

	cmd := &cobra.Command{
		Use:   "uninstall-all PLUGIN",
		Short: "Uninstall every package of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := confirm.ask(cmd, fmt.Sprintf("Uninstall ALL packages of %s?", args[0])); err != nil {
				return err
			}

			n, err := s.Plugins.Item(args[0]).UninstallAll(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("%d packages uninstalled", n))
			return nil
		},
	}

	confirm.bind(cmd)
	return cmd
}
