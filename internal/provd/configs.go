package provd

import (
	"context"
	"net/url"
)

// ConfigManager — конфиги провижининга (cfg_mgr).
type ConfigManager struct {
	c *Client
}

// List возвращает конфиги по фильтру.
func (m *ConfigManager) List(ctx context.Context, q Query) ([]Document, error) {
	params, err := queryParams(q)
	if err != nil {
		return nil, err
	}
	var configs []Document
	err = m.c.getField(ctx, "/cfg_mgr/configs", params, "configs", &configs)
	return configs, err
}

// Get возвращает конфиг по ID.
func (m *ConfigManager) Get(ctx context.Context, id string) (Document, error) {
	var config Document
	err := m.c.getField(ctx, "/cfg_mgr/configs/"+url.PathEscape(id), nil, "config", &config)
	return config, err
}

// GetRaw возвращает конфиг, собранный с учётом родителей.
func (m *ConfigManager) GetRaw(ctx context.Context, id string) (Document, error) {
	var raw Document
	err := m.c.getField(ctx, "/cfg_mgr/configs/"+url.PathEscape(id)+"/raw", nil, "raw_config", &raw)
	return raw, err
}

// Create создаёт конфиг и возвращает его ID.
func (m *ConfigManager) Create(ctx context.Context, config Document) (string, error) {
	var id string
	err := m.c.postField(ctx, "/cfg_mgr/configs", map[string]any{"config": config}, "id", &id)
	return id, err
}

// Update заменяет конфиг целиком.
func (m *ConfigManager) Update(ctx context.Context, config Document) error {
	id, err := documentID(config)
	if err != nil {
		return err
	}
	return m.c.put(ctx, "/cfg_mgr/configs/"+url.PathEscape(id), map[string]any{"config": config})
}

// Delete удаляет конфиг.
func (m *ConfigManager) Delete(ctx context.Context, id string) error {
	return m.c.delete(ctx, "/cfg_mgr/configs/"+url.PathEscape(id))
}

// Autocreate создаёт новый конфиг на основе autocreate-шаблона.
func (m *ConfigManager) Autocreate(ctx context.Context) (string, error) {
	var id string
	err := m.c.postField(ctx, "/cfg_mgr/autocreate", map[string]any{}, "id", &id)
	return id, err
}
