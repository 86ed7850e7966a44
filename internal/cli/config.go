package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/provd-cli/internal/dotted"
)

// NewConfigCmd создаёт группу команд для управления конфигами.
func NewConfigCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage provisioning configs",
	}

	cmd.AddCommand(
		newConfigListCmd(sessionFn, outputFn),
		newConfigShowCmd(sessionFn, outputFn),
		newConfigRawCmd(sessionFn, outputFn),
		newConfigAddCmd(sessionFn, outputFn),
		newConfigUpdateCmd(sessionFn, outputFn),
		newConfigRemoveCmd(sessionFn, outputFn),
		newConfigRemoveAllCmd(sessionFn, outputFn),
		newConfigCloneCmd(sessionFn, outputFn),
		newConfigAutocreateCmd(sessionFn, outputFn),
		newConfigSetCmd(sessionFn, outputFn),
		newConfigUnsetCmd(sessionFn, outputFn),
		newConfigSetParentsCmd(sessionFn, outputFn),
		newConfigCountCmd(sessionFn, outputFn),
	)

	return cmd
}

func newConfigListCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configs",
		Example: `  provd-cli config list
  provd-cli config list -s transient=true -f id,parent_ids`,
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
			configs, err := s.Configs.Find(cmd.Context(), query)
			if err != nil {
				return err
			}

			headers := []string{"ID", "PARENTS", "TRANSIENT", "DEVICE"}
			rows := make([][]string, len(configs))
			for i, c := range configs {
				rows[i] = []string{str(c, "id"), str(c, "parent_ids"), str(c, "transient"), str(c, "deletable")}
			}

			out.Print(headers, rows, configs)
			return nil
		},
	}

	q.bind(cmd)
	return cmd
}

func newConfigShowCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			config, err := s.Configs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outputFn().Document(config)
			return nil
		},
	}
}

func newConfigRawCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "raw ID",
		Short: "Show a config merged with its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			raw, err := s.Configs.GetRaw(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outputFn().Document(raw)
			return nil
		},
	}
}

func newConfigAddCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "add KEY=VALUE...",
		Short: "Create a config from dotted keys",
		Example: `  provd-cli config add id=guest parent_ids=[] raw_config.ip=10.0.0.1 raw_config.http_port=8667
  provd-cli config add id=mydev raw_config.sip_lines.1.username=1001`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			values, err := configAssignments(args)
			if err != nil {
				return err
			}

			id, err := s.Configs.Add(cmd.Context(), values)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config created: %s", id))
			return nil
		},
	}
}

func newConfigUpdateCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "update KEY=VALUE...",
		Short: "Replace a config (id=... required)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			values, err := configAssignments(args)
			if err != nil {
				return err
			}

			if err := s.Configs.Update(cmd.Context(), values); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config updated: %v", values["id"]))
			return nil
		},
	}
}

func newConfigRemoveCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Remove configs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			for _, id := range args {
				if err := s.Configs.Remove(cmd.Context(), id); err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Config removed: %s", id))
			}
			return nil
		},
	}
}

func newConfigRemoveAllCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	var confirm confirmFlag

	cmd := &cobra.Command{
		Use:   "remove-all",
		Short: "Remove every config",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := confirm.ask(cmd, "Remove ALL configs?"); err != nil {
				return err
			}

			n, err := s.Configs.RemoveAll(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("%d configs removed", n))
			return nil
		},
	}

	confirm.bind(cmd)
	return cmd
}

func newConfigCloneCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clone ID [NEW_ID]",
		Short: "Copy a config under a new ID",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			newID := ""
			if len(args) == 2 {
				newID = args[1]
			}

			id, err := s.Configs.Clone(cmd.Context(), args[0], newID)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config created: %s", id))
			return nil
		},
	}
}

func newConfigAutocreateCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "autocreate",
		Short: "Create a config from the autocreate template",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			id, err := s.Configs.Autocreate(cmd.Context())
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config created: %s", id))
			return nil
		},
	}
}

func newConfigSetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "set ID KEY=VALUE...",
		Short:   "Set raw_config values",
		Example: `  provd-cli config set guest sip_lines.1.password=secret ntp_enabled=true`,
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

			changed, err := s.Configs.Item(args[0]).SetConfig(cmd.Context(), values)
			if err != nil {
				return err
			}

			reportChange(out, "Config", args[0], changed)
			return nil
		},
	}
}

func newConfigUnsetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "unset ID KEY...",
		Short: "Remove raw_config values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			changed, err := s.Configs.Item(args[0]).UnsetConfig(cmd.Context(), args[1:]...)
			if err != nil {
				return err
			}

			reportChange(out, "Config", args[0], changed)
			return nil
		},
	}
}

func newConfigSetParentsCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "set-parents ID [PARENT...]",
		Short: "Replace the parents of a config",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			if err := s.Configs.Item(args[0]).SetParents(cmd.Context(), args[1:]...); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Config updated: %s", args[0]))
			return nil
		},
	}
}

func newConfigCountCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			n, err := s.Configs.Count(cmd.Context())
			if err != nil {
				return err
			}

			printCount(outputFn(), n)
			return nil
		},
	}
}

// configAssignments разбирает KEY=VALUE; parent_ids по умолчанию пустой.
func configAssignments(args []string) (map[string]any, error) {
	values, err := dotted.ParseAssignments(args)
	if err != nil {
		return nil, err
	}
	if s, ok := values["parent_ids"].(string); ok {
		values["parent_ids"] = splitList(s)
	}
	if _, ok := values["parent_ids"]; !ok {
		values["parent_ids"] = []any{}
	}
	if _, ok := values["raw_config"]; !ok && !hasPrefix(values, "raw_config.") {
		values["raw_config"] = map[string]any{}
	}
	return values, nil
}

// splitList разбирает "[a,b]" или "a,b" в список строк.
func splitList(s string) []any {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]"))
	list := []any{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func hasPrefix(values map[string]any, prefix string) bool {
	for k := range values {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func reportChange(out *Output, kind, id string, changed bool) {
	if changed {
		out.Success(fmt.Sprintf("%s updated: %s", kind, id))
	} else {
		out.Success(fmt.Sprintf("%s unchanged: %s", kind, id))
	}
}

func printCount(out *Output, n int) {
	if out.JSONMode() {
		out.JSON(map[string]int{"count": n})
		return
	}
	fmt.Fprintln(out.Writer(), strconv.Itoa(n))
}
