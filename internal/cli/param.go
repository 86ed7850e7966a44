package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewParamCmd создаёт группу команд для параметров сервера.
func NewParamCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "param",
		Short: "Manage server parameters",
	}

	cmd.AddCommand(
		newParamListCmd(sessionFn, outputFn),
		newParamGetCmd(sessionFn, outputFn),
		newParamSetCmd(sessionFn, outputFn),
		newParamUnsetCmd(sessionFn, outputFn),
	)

	return cmd
}

func newParamListCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List server parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			params, err := s.Parameters.Infos(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"ID", "VALUE", "DESCRIPTION"}
			rows := make([][]string, len(params))
			for i, p := range params {
				value := ""
				if p.Value != nil {
					value = fmt.Sprint(p.Value)
				}
				rows[i] = []string{p.ID, value, p.Description}
			}

			outputFn().Print(headers, rows, params)
			return nil
		},
	}
}

func newParamGetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Show a server parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}
			out := outputFn()

			value, err := s.Parameters.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(map[string]any{"id": args[0], "value": value})
				return nil
			}
			if value != nil {
				fmt.Fprintln(out.Writer(), value)
			}
			return nil
		},
	}
}

func newParamSetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Set a server parameter",
		Example: `  provd-cli param set locale fr_FR`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := s.Parameters.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Parameter set: %s", args[0]))
			return nil
		},
	}
}

func newParamUnsetCmd(sessionFn SessionFunc, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Reset a server parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFn(cmd.Context())
			if err != nil {
				return err
			}

			if err := s.Parameters.Unset(cmd.Context(), args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Parameter unset: %s", args[0]))
			return nil
		},
	}
}
