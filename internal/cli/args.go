package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/dotted"
	"github.com/shaiso/provd-cli/internal/maint"
	"github.com/shaiso/provd-cli/internal/provd"
)

// queryFlags — общие флаги list-команд.
type queryFlags struct {
	selector []string
	fields   []string
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&q.selector, "selector", "s", nil, "Filter as key=value (repeatable)")
	cmd.Flags().StringSliceVarP(&q.fields, "fields", "f", nil, "Fields to return (comma separated)")
}

func (q *queryFlags) query() (provd.Query, error) {
	selector, err := dotted.ParseAssignments(q.selector)
	if err != nil {
		return provd.Query{}, err
	}
	return provd.Query{Selector: selector, Fields: q.fields}, nil
}

// confirmFlag — флаг --yes для разрушительных команд.
type confirmFlag struct {
	yes bool
}

func (c *confirmFlag) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Do not ask for confirmation")
}

func (c *confirmFlag) confirm(cmd *cobra.Command) maint.Confirm {
	if c.yes {
		return maint.AlwaysConfirm
	}
	return maint.PromptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// ask задаёт вопрос и возвращает maint.ErrAborted при отказе.
func (c *confirmFlag) ask(cmd *cobra.Command, question string) error {
	ok, err := c.confirm(cmd)(question)
	if err != nil {
		return err
	}
	if !ok {
		return maint.ErrAborted
	}
	return nil
}

// reportPending печатает location операций, оставленных без ожидания (--async).
func reportPending(out *Output, ops ...admin.Operation) {
	var locations []string
	for _, op := range ops {
		if op != nil {
			locations = append(locations, op.Location())
		}
	}
	if len(locations) == 0 {
		return
	}
	if out.JSONMode() {
		out.JSON(map[string]any{"operations": locations})
		return
	}
	for _, location := range locations {
		out.Success("Operation started: " + location)
	}
}

// str форматирует значение поля документа для таблицы.
func str(doc provd.Document, key string) string {
	v, ok := doc[key]
	if !ok || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// packageRows строит таблицу пакетов в порядке ID.
func packageRows(pkgs map[string]provd.Document) [][]string {
	ids := make([]string, 0, len(pkgs))
	for id := range pkgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, len(ids))
	for i, id := range ids {
		pkg := pkgs[id]
		rows[i] = []string{id, str(pkg, "version"), str(pkg, "description")}
	}
	return rows
}

var packageHeaders = []string{"ID", "VERSION", "DESCRIPTION"}
