package maint

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/provd"
)

// Info — сводка по серверу.
type Info struct {
	Devices int `json:"devices"`
	Configs int `json:"configs"`
	Plugins int `json:"plugins"`

	// Заполняются только DetailedSystemInfo.
	DeviceIDs []string `json:"device_ids,omitempty"`
	ConfigIDs []string `json:"config_ids,omitempty"`
	PluginIDs []string `json:"plugin_ids,omitempty"`
}

// WriteTo печатает сводку в человекочитаемом виде.
func (i Info) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	section := func(title string, n int, ids []string) {
		fmt.Fprintf(cw, "Nb of %s: %d\n", title, n)
		for _, id := range ids {
			fmt.Fprintf(cw, "    %s\n", id)
		}
	}
	section("devices", i.Devices, i.DeviceIDs)
	section("configs", i.Configs, i.ConfigIDs)
	section("installed plugins", i.Plugins, i.PluginIDs)

	return cw.n, cw.err
}

// SystemInfo возвращает число устройств, конфигов и установленных плагинов.
func SystemInfo(ctx context.Context, s *admin.Session) (Info, error) {
	var info Info

	devices, err := s.Devices.Find(ctx, idOnly(nil))
	if err != nil {
		return info, err
	}
	configs, err := s.Configs.Find(ctx, idOnly(nil))
	if err != nil {
		return info, err
	}
	plugins, err := s.Plugins.Installed(ctx, "")
	if err != nil {
		return info, err
	}

	info.Devices = len(devices)
	info.Configs = len(configs)
	info.Plugins = len(plugins)
	return info, nil
}

// DetailedSystemInfo — SystemInfo со списками идентификаторов.
func DetailedSystemInfo(ctx context.Context, s *admin.Session) (Info, error) {
	var info Info

	devices, err := s.Devices.Find(ctx, idOnly(nil))
	if err != nil {
		return info, err
	}
	configs, err := s.Configs.Find(ctx, idOnly(nil))
	if err != nil {
		return info, err
	}
	plugins, err := s.Plugins.Installed(ctx, "")
	if err != nil {
		return info, err
	}

	info.DeviceIDs = field(devices, "id")
	info.ConfigIDs = field(configs, "id")
	info.PluginIDs = keys(plugins)
	info.Devices = len(info.DeviceIDs)
	info.Configs = len(info.ConfigIDs)
	info.Plugins = len(info.PluginIDs)
	return info, nil
}

// UsedPlugins возвращает плагины, которые используют устройства.
func UsedPlugins(ctx context.Context, s *admin.Session) ([]string, error) {
	devices, err := s.Devices.Find(ctx, provd.Query{Fields: []string{"plugin"}})
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, plugin := range field(devices, "plugin") {
		set[plugin] = struct{}{}
	}
	return sortedSet(set), nil
}

// InstalledPlugins возвращает установленные плагины.
func InstalledPlugins(ctx context.Context, s *admin.Session) ([]string, error) {
	plugins, err := s.Plugins.Installed(ctx, "")
	if err != nil {
		return nil, err
	}
	return keys(plugins), nil
}

// UnusedPlugins возвращает установленные плагины, которые не использует
// ни одно устройство.
func UnusedPlugins(ctx context.Context, s *admin.Session) ([]string, error) {
	installed, used, err := pluginSets(ctx, s)
	if err != nil {
		return nil, err
	}
	return difference(installed, used), nil
}

// MissingPlugins возвращает плагины, которые используют устройства,
// но которые не установлены.
func MissingPlugins(ctx context.Context, s *admin.Session) ([]string, error) {
	installed, used, err := pluginSets(ctx, s)
	if err != nil {
		return nil, err
	}
	return difference(used, installed), nil
}

func pluginSets(ctx context.Context, s *admin.Session) (installed, used []string, err error) {
	installed, err = InstalledPlugins(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	used, err = UsedPlugins(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return installed, used, nil
}

func idOnly(selector map[string]any) provd.Query {
	return provd.Query{Selector: selector, Fields: []string{"id"}}
}

// field извлекает строковое поле; документы без поля пропускаются.
func field(docs []provd.Document, key string) []string {
	result := make([]string, 0, len(docs))
	for _, doc := range docs {
		if v, ok := doc[key].(string); ok {
			result = append(result, v)
		}
	}
	return result
}

func keys(m map[string]provd.Document) []string {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}
	return sortedSet(set)
}

func sortedSet(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// difference возвращает a \ b в порядке a.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, v := range b {
		exclude[v] = struct{}{}
	}

	result := []string{}
	for _, v := range a {
		if _, ok := exclude[v]; !ok {
			result = append(result, v)
		}
	}
	return result
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
