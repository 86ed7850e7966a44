package provd

import (
	"context"
	"net/url"
)

// DeviceManager — устройства (dev_mgr).
type DeviceManager struct {
	c *Client
}

// List возвращает устройства по фильтру.
func (m *DeviceManager) List(ctx context.Context, q Query) ([]Document, error) {
	params, err := queryParams(q)
	if err != nil {
		return nil, err
	}
	var devices []Document
	err = m.c.getField(ctx, "/dev_mgr/devices", params, "devices", &devices)
	return devices, err
}

// Get возвращает устройство по ID.
func (m *DeviceManager) Get(ctx context.Context, id string) (Document, error) {
	var device Document
	err := m.c.getField(ctx, "/dev_mgr/devices/"+url.PathEscape(id), nil, "device", &device)
	return device, err
}

// Create создаёт устройство и возвращает его ID.
func (m *DeviceManager) Create(ctx context.Context, device Document) (string, error) {
	var id string
	err := m.c.postField(ctx, "/dev_mgr/devices", map[string]any{"device": device}, "id", &id)
	return id, err
}

// Update заменяет устройство целиком.
func (m *DeviceManager) Update(ctx context.Context, device Document) error {
	id, err := documentID(device)
	if err != nil {
		return err
	}
	return m.c.put(ctx, "/dev_mgr/devices/"+url.PathEscape(id), map[string]any{"device": device})
}

// Delete удаляет устройство.
func (m *DeviceManager) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, "/dev_mgr/devices/"+url.PathEscape(id))
}

// Reconfigure перегенерирует файлы конфигурации устройства.
func (m *DeviceManager) Reconfigure(ctx context.Context, id string) error {
	return m.c.post(ctx, "/dev_mgr/reconfigure", map[string]string{"id": id})
}

// Synchronize запускает синхронизацию устройства.
func (m *DeviceManager) Synchronize(ctx context.Context, id string) (*Operation, error) {
	return m.c.postOperation(ctx, "/dev_mgr/synchronize", map[string]string{"id": id})
}
