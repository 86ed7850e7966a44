package admin

import (
	"context"

	"github.com/shaiso/provd-cli/internal/provd"
)

// Plugins — плагины сервера.
type Plugins struct {
	s   *Session
	mgr PluginManager
}

// Install устанавливает плагин.
func (p *Plugins) Install(ctx context.Context, id string) (Operation, error) {
	return p.s.run(ctx, "plugin.install", id, func() (Operation, error) {
		return p.mgr.Install(ctx, id)
	})
}

// Upgrade обновляет плагин.
func (p *Plugins) Upgrade(ctx context.Context, id string) (Operation, error) {
	return p.s.run(ctx, "plugin.upgrade", id, func() (Operation, error) {
		return p.mgr.Upgrade(ctx, id)
	})
}

// Uninstall удаляет плагин.
func (p *Plugins) Uninstall(ctx context.Context, id string) error {
	return p.s.track(ctx, "plugin.uninstall", id, func() error {
		return p.mgr.Uninstall(ctx, id)
	})
}

// UninstallAll удаляет все установленные плагины в порядке ID.
func (p *Plugins) UninstallAll(ctx context.Context) (int, error) {
	installed, err := p.mgr.Installed(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range sortedKeys(installed) {
		p.s.printf("Uninstalling plugin %s\n", id)
		if err := p.Uninstall(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Reload перезагружает плагин на сервере.
func (p *Plugins) Reload(ctx context.Context, id string) error {
	return p.s.track(ctx, "plugin.reload", id, func() error {
		return p.mgr.Reload(ctx, id)
	})
}

// Update обновляет индекс доступных плагинов.
func (p *Plugins) Update(ctx context.Context) (Operation, error) {
	return p.s.run(ctx, "plugin.update", "", func() (Operation, error) {
		return p.mgr.UpdateIndex(ctx)
	})
}

// Installed возвращает установленные плагины, отфильтрованные по search.
func (p *Plugins) Installed(ctx context.Context, search string) (map[string]provd.Document, error) {
	pkgs, err := p.mgr.Installed(ctx)
	if err != nil {
		return nil, err
	}
	return SearchPackages(pkgs, search, p.s.Options), nil
}

// Installable возвращает доступные плагины, отфильтрованные по search.
func (p *Plugins) Installable(ctx context.Context, search string) (map[string]provd.Document, error) {
	pkgs, err := p.mgr.Installable(ctx)
	if err != nil {
		return nil, err
	}
	return SearchPackages(pkgs, search, p.s.Options), nil
}

// CountInstalled возвращает число установленных плагинов.
func (p *Plugins) CountInstalled(ctx context.Context) (int, error) {
	pkgs, err := p.mgr.Installed(ctx)
	return len(pkgs), err
}

// Item возвращает плагин для работы с его пакетами.
func (p *Plugins) Item(id string) *Plugin {
	return &Plugin{id: id, plugins: p}
}

// Plugin — пакеты одного плагина (например, прошивки).
type Plugin struct {
	id      string
	plugins *Plugins
}

// ID возвращает идентификатор плагина.
func (p *Plugin) ID() string {
	return p.id
}

// Install устанавливает пакет.
func (p *Plugin) Install(ctx context.Context, pkg string) (Operation, error) {
	s := p.plugins.s
	return s.run(ctx, "plugin.package.install", p.id+"/"+pkg, func() (Operation, error) {
		return p.plugins.mgr.InstallPackage(ctx, p.id, pkg)
	})
}

// InstallAll устанавливает все доступные пакеты в порядке ID.
// При Options.OpAsync возвращает все запущенные операции.
func (p *Plugin) InstallAll(ctx context.Context) ([]Operation, error) {
	pkgs, err := p.plugins.mgr.PackagesInstallable(ctx, p.id)
	if err != nil {
		return nil, err
	}

	var pending []Operation
	for _, pkg := range sortedKeys(pkgs) {
		p.plugins.s.printf("Installing package %s\n", pkg)
		op, err := p.Install(ctx, pkg)
		if err != nil {
			return pending, err
		}
		if op != nil {
			pending = append(pending, op)
		}
	}
	return pending, nil
}

// Upgrade обновляет пакет.
func (p *Plugin) Upgrade(ctx context.Context, pkg string) (Operation, error) {
	s := p.plugins.s
	return s.run(ctx, "plugin.package.upgrade", p.id+"/"+pkg, func() (Operation, error) {
		return p.plugins.mgr.UpgradePackage(ctx, p.id, pkg)
	})
}

// Uninstall удаляет пакет.
func (p *Plugin) Uninstall(ctx context.Context, pkg string) error {
	return p.plugins.s.track(ctx, "plugin.package.uninstall", p.id+"/"+pkg, func() error {
		return p.plugins.mgr.UninstallPackage(ctx, p.id, pkg)
	})
}

// UninstallAll удаляет все установленные пакеты в порядке ID.
func (p *Plugin) UninstallAll(ctx context.Context) (int, error) {
	pkgs, err := p.plugins.mgr.PackagesInstalled(ctx, p.id)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, pkg := range sortedKeys(pkgs) {
		p.plugins.s.printf("Uninstalling package %s\n", pkg)
		if err := p.Uninstall(ctx, pkg); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Installed возвращает установленные пакеты, отфильтрованные по search.
func (p *Plugin) Installed(ctx context.Context, search string) (map[string]provd.Document, error) {
	pkgs, err := p.plugins.mgr.PackagesInstalled(ctx, p.id)
	if err != nil {
		return nil, err
	}
	return SearchPackages(pkgs, search, p.plugins.s.Options), nil
}

// Installable возвращает доступные пакеты, отфильтрованные по search.
func (p *Plugin) Installable(ctx context.Context, search string) (map[string]provd.Document, error) {
	pkgs, err := p.plugins.mgr.PackagesInstallable(ctx, p.id)
	if err != nil {
		return nil, err
	}
	return SearchPackages(pkgs, search, p.plugins.s.Options), nil
}
