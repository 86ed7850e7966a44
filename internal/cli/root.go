package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd собирает дерево команд provd-cli.
func NewRootCmd(app *App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "provd-cli",
		Short:         "provd-cli — administration tool for the provd provisioning server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.BindFlags(root.PersistentFlags())
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	sessionFn := SessionFunc(app.Session)
	outputFn := app.Output

	root.AddCommand(
		NewConfigCmd(sessionFn, outputFn),
		NewDeviceCmd(sessionFn, outputFn),
		NewPluginCmd(sessionFn, outputFn),
		NewParamCmd(sessionFn, outputFn),
		NewHelpersCmd(sessionFn, outputFn),
	)

	return root
}
