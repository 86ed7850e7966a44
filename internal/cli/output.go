package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений

	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
}

// NewOutputTo создаёт Output. Если jsonMode=true, данные выводятся в JSON.
// Сообщения окрашиваются, только если styled.
func NewOutputTo(w, errW io.Writer, jsonMode, styled bool) *Output {
	o := &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
		success:  lipgloss.NewStyle(),
		warn:     lipgloss.NewStyle(),
		failure:  lipgloss.NewStyle(),
	}
	if styled {
		o.success = o.success.Foreground(lipgloss.Color("2"))
		o.warn = o.warn.Foreground(lipgloss.Color("3"))
		o.failure = o.failure.Foreground(lipgloss.Color("1")).Bold(true)
	}
	return o
}

// JSONMode сообщает, включён ли вывод в JSON.
func (o *Output) JSONMode() bool {
	return o.jsonMode
}

// Writer возвращает writer для данных.
func (o *Output) Writer() io.Writer {
	return o.w
}

// ErrWriter возвращает writer для сообщений.
func (o *Output) ErrWriter() io.Writer {
	return o.errW
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Document выводит вложенный документ: JSON в режиме --json, иначе YAML.
func (o *Output) Document(v any) {
	if o.jsonMode {
		o.JSON(v)
		return
	}
	enc := yaml.NewEncoder(o.w)
	enc.SetIndent(2)
	enc.Encode(v)
	enc.Close()
}

// List выводит список строк: по одной на строку или JSON-массив.
func (o *Output) List(items []string) {
	if o.jsonMode {
		if items == nil {
			items = []string{}
		}
		o.JSON(items)
		return
	}
	for _, item := range items {
		fmt.Fprintln(o.w, item)
	}
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, o.success.Render(msg))
}

// Warn выводит предупреждение в stderr.
func (o *Output) Warn(msg string) {
	fmt.Fprintln(o.errW, o.warn.Render("Warning: "+msg))
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, o.failure.Render("Error: "+msg))
}
