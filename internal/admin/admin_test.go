package admin

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/provd-cli/internal/mac"
	"github.com/shaiso/provd-cli/internal/oip"
	"github.com/shaiso/provd-cli/internal/provd"
)

func TestConfigs_AddExpandsDottedKeys(t *testing.T) {
	f := newFixture(DefaultOptions())

	id, err := f.session.Configs.Add(context.Background(), map[string]any{
		"id":                    "guest",
		"parent_ids":            []any{"base"},
		"raw_config.ip":         "10.0.0.1",
		"raw_config.sip.1.user": "1001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "guest" {
		t.Errorf("expected id guest, got %s", id)
	}

	want := map[string]any{"ip": "10.0.0.1", "sip": map[string]any{"1": map[string]any{"user": "1001"}}}
	if got := rawConfig(f.configs.docs["guest"]); !reflect.DeepEqual(got, want) {
		t.Errorf("expected raw_config %v, got %v", want, got)
	}

	if actions := f.actions(); len(actions) != 1 || actions[0] != "config.add guest success" {
		t.Errorf("unexpected audit trail %v", actions)
	}
}

func TestConfig_SetConfigOnlyUpdatesOnChange(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.configs.docs["guest"] = provd.Document{
		"id":         "guest",
		"raw_config": map[string]any{"port": float64(5060), "sip": map[string]any{"user": "1001"}},
	}
	cfg := f.session.Configs.Item("guest")
	ctx := context.Background()

	changed, err := cfg.SetConfig(ctx, map[string]any{"port": 5060, "sip.user": "1001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || f.configs.updates != 0 {
		t.Errorf("identical values must not trigger an update (changed=%t, updates=%d)", changed, f.configs.updates)
	}

	changed, err = cfg.SetConfig(ctx, map[string]any{"sip.pass": "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || f.configs.updates != 1 {
		t.Fatalf("expected one update (changed=%t, updates=%d)", changed, f.configs.updates)
	}

	want := map[string]any{"port": float64(5060), "sip": map[string]any{"user": "1001", "pass": "secret"}}
	if got := rawConfig(f.configs.docs["guest"]); !reflect.DeepEqual(got, want) {
		t.Errorf("expected raw_config %v, got %v", want, got)
	}
}

func TestConfig_UnsetConfig(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.configs.docs["guest"] = provd.Document{
		"id":         "guest",
		"raw_config": map[string]any{"a": map[string]any{"b": 1, "c": 2}, "d": "leaf"},
	}
	cfg := f.session.Configs.Item("guest")
	ctx := context.Background()

	changed, err := cfg.UnsetConfig(ctx, "d.x", "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("unsetting missing keys must not update")
	}

	changed, err = cfg.UnsetConfig(ctx, "a.b", "d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected update")
	}

	want := map[string]any{"a": map[string]any{"c": 2}}
	if got := rawConfig(f.configs.docs["guest"]); !reflect.DeepEqual(got, want) {
		t.Errorf("expected raw_config %v, got %v", want, got)
	}
}

func TestConfig_SetParents(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.configs.docs["guest"] = provd.Document{"id": "guest", "parent_ids": []any{"old"}}

	if err := f.session.Configs.Item("guest").SetParents(context.Background(), "base", "defaultconfigdevice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []any{"base", "defaultconfigdevice"}
	if got := f.configs.docs["guest"]["parent_ids"]; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestConfigs_Clone(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.configs.docs["base"] = provd.Document{"id": "base", "raw_config": map[string]any{"x": 1}}
	ctx := context.Background()

	id, err := f.session.Configs.Clone(ctx, "base", "copy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "copy" || !reflect.DeepEqual(rawConfig(f.configs.docs["copy"]), map[string]any{"x": 1}) {
		t.Errorf("unexpected clone %s %v", id, f.configs.docs["copy"])
	}

	id, err = f.session.Configs.Clone(ctx, "base", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "base" || !strings.HasPrefix(id, "generated-") {
		t.Errorf("expected server-generated id, got %s", id)
	}
	if f.configs.docs["base"]["id"] != "base" {
		t.Error("source config must not change")
	}
}

func TestConfigs_RemoveAll(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.configs.docs["a"] = provd.Document{"id": "a"}
	f.configs.docs["b"] = provd.Document{"id": "b"}

	n, err := f.session.Configs.RemoveAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(f.configs.docs) != 0 {
		t.Errorf("expected 2 removed, got %d (left %d)", n, len(f.configs.docs))
	}
	if f.out.String() != "Removing config a\nRemoving config b\n" {
		t.Errorf("unexpected output %q", f.out.String())
	}
}

func TestDevices_SynchronizeFollowsAndReleases(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.devices.docs["d1"] = provd.Document{"id": "d1"}

	op, err := f.session.Devices.Synchronize(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op != nil {
		t.Error("awaited operation must not be returned")
	}

	fake := f.devices.ops["d1"]
	if fake.deletes != 1 {
		t.Errorf("expected operation to be deleted once, got %d", fake.deletes)
	}
	if !strings.Contains(f.out.String(), "operation done.") {
		t.Errorf("expected progress output, got %q", f.out.String())
	}
	if f.ops["device.synchronize success"] != 1 {
		t.Errorf("expected metrics observation, got %v", f.ops)
	}
}

func TestSession_UpdateInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{"default", oip.DefaultInterval, oip.DefaultInterval},
		{"unset", 0, oip.DefaultInterval},
		{"override", 300 * time.Millisecond, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, progress := range []bool{true, false} {
				opts := DefaultOptions()
				opts.UpdateInterval = tt.interval
				opts.OpProgress = progress
				f := newFixture(opts)

				if _, err := f.session.Devices.Synchronize(context.Background(), "d1"); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				// progress -> success: одна пауза между двумя опросами
				if !reflect.DeepEqual(f.slept, []time.Duration{tt.want}) {
					t.Errorf("progress=%v: slept %v, want [%v]", progress, f.slept, tt.want)
				}
			}
		})
	}
}

func TestDevices_SynchronizeAsync(t *testing.T) {
	opts := DefaultOptions()
	opts.OpAsync = true
	f := newFixture(opts)

	op, err := f.session.Devices.Synchronize(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op == nil || op.Location() != "/operation/d1" {
		t.Fatalf("expected pending operation, got %v", op)
	}

	fake := f.devices.ops["d1"]
	if fake.updates != 0 || fake.deletes != 0 {
		t.Errorf("async operation must be left alone (updates=%d deletes=%d)", fake.updates, fake.deletes)
	}
}

func TestDevices_SynchronizeSilent(t *testing.T) {
	opts := DefaultOptions()
	opts.OpProgress = false
	f := newFixture(opts)

	if _, err := f.session.Devices.Synchronize(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.out.String() != "operation done. \n" {
		t.Errorf("unexpected output %q", f.out.String())
	}
}

func TestDevices_SynchronizeUpdateErrorStillDeletes(t *testing.T) {
	f := newFixture(DefaultOptions())
	fake := newFakeOp("/operation/9")
	fake.updateErr = errors.New("connection refused")
	f.devices.ops = map[string]*fakeOp{"d1": fake}

	_, err := f.session.Devices.Synchronize(context.Background(), "d1")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected update error, got %v", err)
	}
	if fake.deletes != 1 {
		t.Errorf("expected delete after failure, got %d", fake.deletes)
	}
	if f.ops["device.synchronize error"] != 1 {
		t.Errorf("expected error observation, got %v", f.ops)
	}
	if actions := f.actions(); len(actions) != 1 || actions[0] != "device.synchronize d1 failure" {
		t.Errorf("unexpected audit trail %v", actions)
	}
}

func TestDevices_SynchronizeFailedOperation(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.devices.ops = map[string]*fakeOp{"d1": newFakeOp("/operation/1", oip.StateFail)}

	_, err := f.session.Devices.Synchronize(context.Background(), "d1")
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

func TestDevices_UsingMAC(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.devices.docs["d1"] = provd.Document{"id": "d1", "mac": "00:11:22:aa:bb:cc"}
	f.devices.docs["d2"] = provd.Document{"id": "d2", "mac": "00:11:22:aa:bb:cd"}
	ctx := context.Background()

	group, err := f.session.Devices.UsingMAC(ctx, "00-11-22-AA-BB-CC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(group.IDs(), []string{"d1"}) {
		t.Errorf("unexpected group %v", group.IDs())
	}

	if err := group.Reconfigure(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(f.devices.reconfigured, []string{"d1"}) {
		t.Errorf("unexpected reconfigure calls %v", f.devices.reconfigured)
	}

	if _, err := f.session.Devices.UsingMAC(ctx, "not-a-mac"); !errors.Is(err, mac.ErrInvalidMAC) {
		t.Errorf("expected ErrInvalidMAC, got %v", err)
	}
}

func TestDeviceGroup_Synchronize(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.devices.docs["d1"] = provd.Document{"id": "d1", "plugin": "p"}
	f.devices.docs["d2"] = provd.Document{"id": "d2", "plugin": "p"}
	f.devices.docs["d3"] = provd.Document{"id": "d3", "plugin": "other"}

	group, err := f.session.Devices.UsingPlugin(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := group.Synchronize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(f.devices.synced, []string{"d1", "d2"}) {
		t.Errorf("unexpected synchronize calls %v", f.devices.synced)
	}
}

func TestDevice_SetUnset(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.devices.docs["d1"] = provd.Document{"id": "d1", "plugin": "p", "config": "c"}
	dev := f.session.Devices.Item("d1")
	ctx := context.Background()

	changed, err := dev.Set(ctx, map[string]any{"plugin": "p"})
	if err != nil || changed {
		t.Errorf("same value must not update: %t %v", changed, err)
	}

	changed, err = dev.Set(ctx, map[string]any{"plugin": "q"})
	if err != nil || !changed {
		t.Fatalf("expected update: %t %v", changed, err)
	}
	if f.devices.docs["d1"]["plugin"] != "q" {
		t.Errorf("unexpected device %v", f.devices.docs["d1"])
	}

	changed, err = dev.Unset(ctx, "config", "missing")
	if err != nil || !changed {
		t.Fatalf("expected update: %t %v", changed, err)
	}
	if _, ok := f.devices.docs["d1"]["config"]; ok {
		t.Errorf("config should be removed: %v", f.devices.docs["d1"])
	}
	if f.devices.updates != 2 {
		t.Errorf("expected 2 updates, got %d", f.devices.updates)
	}
}

func TestPlugins_UpdateAndUninstallAll(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.plugins.installed = map[string]provd.Document{"b": {}, "a": {}}
	ctx := context.Background()

	if _, err := f.session.Plugins.Update(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := f.session.Plugins.UninstallAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	want := []string{"update", "uninstall a", "uninstall b"}
	if !reflect.DeepEqual(f.plugins.calls, want) {
		t.Errorf("expected calls %v, got %v", want, f.plugins.calls)
	}
}

func TestPlugin_Packages(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.plugins.pkgs = map[string]map[string]provd.Document{
		"xivo-cisco": {"fw-2": {}, "fw-1": {}},
	}
	plugin := f.session.Plugins.Item("xivo-cisco")
	ctx := context.Background()

	if _, err := plugin.InstallAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := plugin.Uninstall(ctx, "fw-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"install-pkg xivo-cisco/fw-1",
		"install-pkg xivo-cisco/fw-2",
		"uninstall-pkg xivo-cisco/fw-1",
	}
	if !reflect.DeepEqual(f.plugins.calls, want) {
		t.Errorf("expected calls %v, got %v", want, f.plugins.calls)
	}
}

func TestSearchPackages(t *testing.T) {
	pkgs := map[string]provd.Document{
		"xivo-aastra-3.3.1": {"description": "Plugin for Aastra 6731i"},
		"xivo-cisco-sccp":   {"description": "Plugin for Cisco SCCP phones"},
		"null":              {},
	}

	tests := []struct {
		name   string
		search string
		opts   Options
		want   []string
	}{
		{"empty search", "", DefaultOptions(), []string{"null", "xivo-aastra-3.3.1", "xivo-cisco-sccp"}},
		{"id match", "cisco", DefaultOptions(), []string{"xivo-cisco-sccp"}},
		{"case insensitive", "AASTRA", DefaultOptions(), []string{"xivo-aastra-3.3.1"}},
		{"description match", "phones", DefaultOptions(), []string{"xivo-cisco-sccp"}},
		{"description disabled", "phones", Options{}, nil},
		{"case sensitive", "AASTRA", Options{SearchCaseSensitive: true, SearchDescription: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchPackages(pkgs, tt.search, tt.opts)
			keys := sortedKeys(got)
			if len(keys) == 0 {
				keys = nil
			}
			if !reflect.DeepEqual(keys, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, keys)
			}
		})
	}
}

func TestParameters(t *testing.T) {
	f := newFixture(DefaultOptions())
	ctx := context.Background()

	if err := f.session.Parameters.Set(ctx, "locale", "fr_FR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := f.session.Parameters.Get(ctx, "locale")
	if err != nil || v != "fr_FR" {
		t.Errorf("unexpected value %v %v", v, err)
	}

	if err := f.session.Parameters.Unset(ctx, "locale"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.params.values["locale"]; ok {
		t.Error("expected param to be unset")
	}

	want := []string{"param.set locale success", "param.unset locale success"}
	if got := f.actions(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected audit %v, got %v", want, got)
	}
}
