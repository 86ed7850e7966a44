package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/dotted"
)

// NewDeviceCmd создаёт группу команд для управления устройствами.
func NewDeviceCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "device",
		Aliases: []string{"dev"},
		Short:   "Manage devices",
	}

	cmd.AddCommand(
		newDeviceListCmd(sessionFn, outputFn),
		newDeviceShowCmd(sessionFn, outputFn),
		newDeviceAddCmd(sessionFn, outputFn),
		newDeviceUpdateCmd(sessionFn, outputFn),
		newDeviceRemoveCmd(sessionFn, outputFn),
		newDeviceRemoveAllCmd(sessionFn, outputFn),
		newDeviceReconfigureCmd(sessionFn, outputFn),
		newDeviceSynchronizeCmd(sessionFn, outputFn),
		newDeviceSetCmd(sessionFn, outputFn),
		newDeviceUnsetCmd(sessionFn, outputFn),
		newDeviceCountCmd(sessionFn, outputFn),
		newDeviceGroupCmd(sessionFn, outputFn),
	)

	return cmd
}

func newDeviceListCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Example: `  provd-cli device list
  provd-cli device list -s plugin=xivo-aastra-3.3.1-SP4 -f id,mac`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			query, err := q.query()
			if err != nil {
				return err
			}
			devices, err := s.Devices.Find(cmd.Context(), query)
			if err != nil {
				return err
			}

			headers := []string{"ID", "MAC", "IP", "PLUGIN", "CONFIG"}
			rows := make([][]string, len(devices))
			for i, d := range devices {
				rows[i] = []string{str(d, "id"), str(d, "mac"), str(d, "ip"), str(d, "plugin"), str(d, "config")}
			}

			out.Print(headers, rows, devices)
			return nil
		},
	}

	q.bind(cmd)
	return cmd
}

func newDeviceShowCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			device, err := s.Devices.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outputFn().Document(device)
			return nil
		},
	}
}

func newDeviceAddCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "add KEY=VALUE...",
		Short:   "Create a device",
		Example: `  provd-cli device add mac=00:11:22:33:44:55 ip=10.0.0.10 plugin=null config=guest`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			values, err := dotted.ParseAssignments(args)
			if err != nil {
				return err
			}

			id, err := s.Devices.Add(cmd.Context(), dotted.Expand(values).Map())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Device created: %s", id))
			return nil
		},
	}
}

func newDeviceUpdateCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "update KEY=VALUE...",
		Short: "Replace a device (id=... required)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			values, err := dotted.ParseAssignments(args)
			if err != nil {
				return err
			}

			if err := s.Devices.Update(cmd.Context(), dotted.Expand(values).Map()); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Device updated: %v", values["id"]))
			return nil
		},
	}
}

func newDeviceRemoveCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Remove devices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			for _, id := range args {
				if err := s.Devices.Remove(cmd.Context(), id); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Device removed: %s", id))
			}
			return nil
		},
	}
}

func newDeviceRemoveAllCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var confirm confirmFlag

	cmd := &cobra.Command{
		Use:   "remove-all",
		Short: "Remove every device",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := confirm.ask(cmd, "Remove ALL devices?"); err != nil {
				return err
			}

			n, err := s.Devices.RemoveAll(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("%d devices removed", n))
			return nil
		},
	}

	confirm.bind(cmd)
	return cmd
}

func newDeviceReconfigureCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reconfigure ID...",
		Short: "Regenerate the configuration files of devices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			for _, id := range args {
				if err := s.Devices.Reconfigure(cmd.Context(), id); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Device reconfigured: %s", id))
			}
			return nil
		},
	}
}

func newDeviceSynchronizeCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "synchronize ID...",
		Aliases: []string{"sync"},
		Short:   "Synchronize devices (usually reboots them)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			var pending []admin.Operation
			var errs []error
			for _, id := range args {
				op, err := s.Devices.Synchronize(cmd.Context(), id)
				if err != nil {
					errs = append(errs, fmt.Errorf("synchronize %s: %w", id, err))
					continue
				}
				pending = append(pending, op)
			}

			reportPending(out, pending...)
			return errors.Join(errs...)
		},
	}
}

func newDeviceSetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "set ID KEY=VALUE...",
		Short:   "Set device fields",
		Example: `  provd-cli device set 8d3d2f... config=guest ip=10.0.0.11`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			values, err := dotted.ParseAssignments(args[1:])
			if err != nil {
				return err
			}

			changed, err := s.Devices.Item(args[0]).Set(cmd.Context(), values)
			if err != nil {
				return err
			}

			reportChange(out, "Device", args[0], changed)
			return nil
		},
	}
}

func newDeviceUnsetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "unset ID KEY...",
		Short: "Remove device fields",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			changed, err := s.Devices.Item(args[0]).Unset(cmd.Context(), args[1:]...)
			if err != nil {
				return err
			}

			reportChange(out, "Device", args[0], changed)
			return nil
		},
	}
}

func newDeviceCountCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			n, err := s.Devices.Count(cmd.Context())
			if err != nil {
				return err
			}

			printCount(outputFn(), n)
			return nil
		},
	}
}

func newDeviceGroupCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var (
		plugin      string
		addr        string
		reconfigure bool
		synchronize bool
	)

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Select devices by plugin or MAC and act on them",
		Example: `  provd-cli device group --plugin xivo-cisco-spa-7.5.4 --reconfigure
  provd-cli device group --mac 00-11-22-33-44-55 --synchronize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			var group *admin.DeviceGroup
			if plugin != "" {
				group, err = s.Devices.UsingPlugin(cmd.Context(), plugin)
			} else {
				group, err = s.Devices.UsingMAC(cmd.Context(), addr)
			}
			if err != nil {
				return err
			}

			if reconfigure {
				if err := group.Reconfigure(cmd.Context()); err != nil {
					return err
				}
			}
			if synchronize {
				pending, err := group.Synchronize(cmd.Context())
				reportPending(out, pending...)
				if err != nil {
					return err
				}
			}

			if !reconfigure && !synchronize {
				out.List(group.IDs())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&plugin, "plugin", "", "Select devices using this plugin")
	cmd.Flags().StringVar(&addr, "mac", "", "Select devices with this MAC address")
	cmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "Reconfigure the selected devices")
	cmd.Flags().BoolVar(&synchronize, "synchronize", false, "Synchronize the selected devices")
	cmd.MarkFlagsMutuallyExclusive("plugin", "mac")
	cmd.MarkFlagsOneRequired("plugin", "mac")

	return cmd
}
