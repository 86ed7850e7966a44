package provd

import (
	"context"
	"net/url"
)

// PluginManager — плагины и их пакеты (pg_mgr).
type PluginManager struct {
	c *Client
}

// Install устанавливает плагин.
func (m *PluginManager) Install(ctx context.Context, id string) (*Operation, error) {
	return m.c.postOperation(ctx, "/pg_mgr/install/install", map[string]string{"id": id})
}

// Upgrade обновляет плагин.
func (m *PluginManager) Upgrade(ctx context.Context, id string) (*Operation, error) {
	return m.c.postOperation(ctx, "/pg_mgr/install/upgrade", map[string]string{"id": id})
}

// Uninstall удаляет плагин.
func (m *PluginManager) Uninstall(ctx context.Context, id string) error {
	return m.c.post(ctx, "/pg_mgr/install/uninstall", map[string]string{"id": id})
}

// UpdateIndex обновляет список доступных для установки плагинов.
func (m *PluginManager) UpdateIndex(ctx context.Context) (*Operation, error) {
	return m.c.postOperation(ctx, "/pg_mgr/install/update", map[string]any{})
}

// Reload перезагружает плагин на сервере.
func (m *PluginManager) Reload(ctx context.Context, id string) error {
	return m.c.post(ctx, "/pg_mgr/reload", map[string]string{"id": id})
}

// Installed возвращает установленные плагины.
func (m *PluginManager) Installed(ctx context.Context) (map[string]Document, error) {
	var pkgs map[string]Document
	err := m.c.getField(ctx, "/pg_mgr/install/installed", nil, "pkgs", &pkgs)
	return pkgs, err
}

// Installable возвращает плагины, доступные для установки.
func (m *PluginManager) Installable(ctx context.Context) (map[string]Document, error) {
	var pkgs map[string]Document
	err := m.c.getField(ctx, "/pg_mgr/install/installable", nil, "pkgs", &pkgs)
	return pkgs, err
}

// InstallPackage устанавливает пакет плагина (например, прошивку).
func (m *PluginManager) InstallPackage(ctx context.Context, plugin, pkg string) (*Operation, error) {
	return m.c.postOperation(ctx, pluginPath(plugin)+"/install/install", map[string]string{"id": pkg})
}

// UpgradePackage обновляет пакет плагина.
func (m *PluginManager) UpgradePackage(ctx context.Context, plugin, pkg string) (*Operation, error) {
	return m.c.postOperation(ctx, pluginPath(plugin)+"/install/upgrade", map[string]string{"id": pkg})
}

// UninstallPackage удаляет пакет плагина.
func (m *PluginManager) UninstallPackage(ctx context.Context, plugin, pkg string) error {
	return m.c.post(ctx, pluginPath(plugin)+"/install/uninstall", map[string]string{"id": pkg})
}

// PackagesInstalled возвращает установленные пакеты плагина.
func (m *PluginManager) PackagesInstalled(ctx context.Context, plugin string) (map[string]Document, error) {
	var pkgs map[string]Document
	err := m.c.getField(ctx, pluginPath(plugin)+"/install/installed", nil, "pkgs", &pkgs)
	return pkgs, err
}

// PackagesInstallable возвращает пакеты плагина, доступные для установки.
func (m *PluginManager) PackagesInstallable(ctx context.Context, plugin string) (map[string]Document, error) {
	var pkgs map[string]Document
	err := m.c.getField(ctx, pluginPath(plugin)+"/install/installable", nil, "pkgs", &pkgs)
	return pkgs, err
}

func pluginPath(plugin string) string {
	return "/pg_mgr/plugins/" + url.PathEscape(plugin)
}
