package admin

import (
	"context"
	"maps"

	"github.com/shaiso/provd-cli/internal/mac"
	"github.com/shaiso/provd-cli/internal/provd"
)

// Devices — устройства.
type Devices struct {
	s   *Session
	mgr DeviceManager
}

// Add создаёт устройство и возвращает его ID.
func (d *Devices) Add(ctx context.Context, device provd.Document) (string, error) {
	var id string
	err := d.s.track(ctx, "device.add", stringField(device, "mac"), func() error {
		var err error
		id, err = d.mgr.Create(ctx, device)
		return err
	})
	return id, err
}

// Get возвращает устройство.
func (d *Devices) Get(ctx context.Context, id string) (provd.Document, error) {
	return d.mgr.Get(ctx, id)
}

// Update заменяет устройство целиком.
func (d *Devices) Update(ctx context.Context, device provd.Document) error {
	return d.s.track(ctx, "device.update", stringField(device, "id"), func() error {
		return d.mgr.Update(ctx, device)
	})
}

// Remove удаляет устройство.
func (d *Devices) Remove(ctx context.Context, id string) error {
	return d.s.track(ctx, "device.remove", id, func() error {
		return d.mgr.Delete(ctx, id)
	})
}

// RemoveAll удаляет все устройства и возвращает их число.
func (d *Devices) RemoveAll(ctx context.Context) (int, error) {
	devices, err := d.mgr.List(ctx, provd.Query{Fields: []string{"id"}})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids(devices) {
		d.s.printf("Removing device %s\n", id)
		if err := d.Remove(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Reconfigure перегенерирует файлы устройства.
func (d *Devices) Reconfigure(ctx context.Context, id string) error {
	return d.s.track(ctx, "device.reconfigure", id, func() error {
		return d.mgr.Reconfigure(ctx, id)
	})
}

// Synchronize синхронизирует устройство (обычно перезагрузкой).
// При Options.OpAsync возвращает незавершённую операцию.
func (d *Devices) Synchronize(ctx context.Context, id string) (Operation, error) {
	return d.s.run(ctx, "device.synchronize", id, func() (Operation, error) {
		return d.mgr.Synchronize(ctx, id)
	})
}

// Find возвращает устройства по фильтру.
func (d *Devices) Find(ctx context.Context, q provd.Query) ([]provd.Document, error) {
	return d.mgr.List(ctx, q)
}

// Count возвращает число устройств.
func (d *Devices) Count(ctx context.Context) (int, error) {
	devices, err := d.mgr.List(ctx, provd.Query{Fields: []string{"id"}})
	return len(devices), err
}

// Item возвращает устройство как объект для точечных изменений.
func (d *Devices) Item(id string) *Device {
	return &Device{id: id, devices: d}
}

// UsingPlugin возвращает группу устройств с плагином pluginID.
func (d *Devices) UsingPlugin(ctx context.Context, pluginID string) (*DeviceGroup, error) {
	return d.group(ctx, map[string]any{"plugin": pluginID})
}

// UsingMAC возвращает группу устройств с MAC-адресом addr в любом написании.
func (d *Devices) UsingMAC(ctx context.Context, addr string) (*DeviceGroup, error) {
	normalized, err := mac.Normalize(addr)
	if err != nil {
		return nil, err
	}
	return d.group(ctx, map[string]any{"mac": normalized})
}

func (d *Devices) group(ctx context.Context, selector map[string]any) (*DeviceGroup, error) {
	devices, err := d.mgr.List(ctx, provd.Query{Selector: selector, Fields: []string{"id"}})
	if err != nil {
		return nil, err
	}
	return &DeviceGroup{devices: d, ids: ids(devices)}, nil
}

// DeviceGroup — набор устройств, выбранный фильтром.
type DeviceGroup struct {
	devices *Devices
	ids     []string
}

// IDs возвращает идентификаторы устройств группы.
func (g *DeviceGroup) IDs() []string {
	return g.ids
}

// Reconfigure перегенерирует файлы всех устройств группы.
func (g *DeviceGroup) Reconfigure(ctx context.Context) error {
	for _, id := range g.ids {
		g.devices.s.printf("Reconfiguring device %s\n", id)
		if err := g.devices.Reconfigure(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Synchronize синхронизирует все устройства группы по очереди.
// При Options.OpAsync возвращает все запущенные операции.
func (g *DeviceGroup) Synchronize(ctx context.Context) ([]Operation, error) {
	var pending []Operation
	for _, id := range g.ids {
		g.devices.s.printf("Synchronizing device %s\n", id)
		op, err := g.devices.Synchronize(ctx, id)
		if err != nil {
			return pending, err
		}
		if op != nil {
			pending = append(pending, op)
		}
	}
	return pending, nil
}

// Device — одно устройство.
type Device struct {
	id      string
	devices *Devices
}

// ID возвращает идентификатор устройства.
func (d *Device) ID() string {
	return d.id
}

// Get возвращает устройство.
func (d *Device) Get(ctx context.Context) (provd.Document, error) {
	return d.devices.mgr.Get(ctx, d.id)
}

// Set заменяет поля верхнего уровня. Устройство отправляется на сервер,
// только если что-то изменилось.
func (d *Device) Set(ctx context.Context, values map[string]any) (bool, error) {
	return d.modify(ctx, "device.set", func(device provd.Document) {
		maps.Copy(device, values)
	})
}

// Unset удаляет поля верхнего уровня.
func (d *Device) Unset(ctx context.Context, keys ...string) (bool, error) {
	return d.modify(ctx, "device.unset", func(device provd.Document) {
		for _, key := range keys {
			delete(device, key)
		}
	})
}

func (d *Device) modify(ctx context.Context, action string, fn func(provd.Document)) (bool, error) {
	old, err := d.devices.mgr.Get(ctx, d.id)
	if err != nil {
		return false, err
	}

	updated := maps.Clone(old)
	fn(updated)
	if jsonEqual(old, updated) {
		return false, nil
	}

	err = d.devices.s.track(ctx, action, d.id, func() error {
		return d.devices.mgr.Update(ctx, updated)
	})
	return err == nil, err
}

// Reconfigure перегенерирует файлы устройства.
func (d *Device) Reconfigure(ctx context.Context) error {
	return d.devices.Reconfigure(ctx, d.id)
}

// Synchronize синхронизирует устройство.
func (d *Device) Synchronize(ctx context.Context) (Operation, error) {
	return d.devices.Synchronize(ctx, d.id)
}
