package admin

import (
	"context"

	"github.com/shaiso/provd-cli/internal/provd"
)

// FromClient заполняет менеджеры SessionConfig клиентом provd.
func FromClient(client *provd.Client, cfg SessionConfig) SessionConfig {
	cfg.Configs = client.Configs()
	cfg.Devices = deviceManager{client.Devices()}
	cfg.Plugins = pluginManager{client.Plugins()}
	cfg.Params = client.Params()
	return cfg
}

// deviceManager приводит *provd.Operation к Operation.
type deviceManager struct {
	*provd.DeviceManager
}

func (m deviceManager) Synchronize(ctx context.Context, id string) (Operation, error) {
	return operation(m.DeviceManager.Synchronize(ctx, id))
}

type pluginManager struct {
	*provd.PluginManager
}

func (m pluginManager) Install(ctx context.Context, id string) (Operation, error) {
	return operation(m.PluginManager.Install(ctx, id))
}

func (m pluginManager) Upgrade(ctx context.Context, id string) (Operation, error) {
	return operation(m.PluginManager.Upgrade(ctx, id))
}

func (m pluginManager) UpdateIndex(ctx context.Context) (Operation, error) {
	return operation(m.PluginManager.UpdateIndex(ctx))
}

func (m pluginManager) InstallPackage(ctx context.Context, plugin, pkg string) (Operation, error) {
	return operation(m.PluginManager.InstallPackage(ctx, plugin, pkg))
}

func (m pluginManager) UpgradePackage(ctx context.Context, plugin, pkg string) (Operation, error) {
	return operation(m.PluginManager.UpgradePackage(ctx, plugin, pkg))
}

// operation не даёт nil-указателю превратиться в не-nil интерфейс.
func operation(op *provd.Operation, err error) (Operation, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}
