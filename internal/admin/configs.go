package admin

import (
	"context"
	"fmt"

	"github.com/shaiso/provd-cli/internal/dotted"
	"github.com/shaiso/provd-cli/internal/provd"
)

// Configs — конфиги провижининга.
type Configs struct {
	s   *Session
	mgr ConfigManager
}

// Add раскрывает точечные ключи, создаёт конфиг и возвращает его ID.
func (c *Configs) Add(ctx context.Context, config map[string]any) (string, error) {
	var id string
	err := c.s.track(ctx, "config.add", stringField(config, "id"), func() error {
		var err error
		id, err = c.mgr.Create(ctx, dotted.Expand(config).Map())
		return err
	})
	return id, err
}

// Get возвращает конфиг.
func (c *Configs) Get(ctx context.Context, id string) (provd.Document, error) {
	return c.mgr.Get(ctx, id)
}

// GetRaw возвращает конфиг, собранный с учётом родителей.
func (c *Configs) GetRaw(ctx context.Context, id string) (provd.Document, error) {
	return c.mgr.GetRaw(ctx, id)
}

// Update раскрывает точечные ключи и заменяет конфиг целиком.
func (c *Configs) Update(ctx context.Context, config map[string]any) error {
	return c.s.track(ctx, "config.update", stringField(config, "id"), func() error {
		return c.mgr.Update(ctx, dotted.Expand(config).Map())
	})
}

// Remove удаляет конфиг.
func (c *Configs) Remove(ctx context.Context, id string) error {
	return c.s.track(ctx, "config.remove", id, func() error {
		return c.mgr.Delete(ctx, id)
	})
}

// RemoveAll удаляет все конфиги и возвращает их число.
func (c *Configs) RemoveAll(ctx context.Context) (int, error) {
	configs, err := c.mgr.List(ctx, provd.Query{Fields: []string{"id"}})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids(configs) {
		c.s.printf("Removing config %s\n", id)
		if err := c.Remove(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Autocreate создаёт конфиг с автоматически выбранными значениями.
func (c *Configs) Autocreate(ctx context.Context) (string, error) {
	var id string
	err := c.s.track(ctx, "config.autocreate", "", func() error {
		var err error
		id, err = c.mgr.Autocreate(ctx)
		return err
	})
	return id, err
}

// Clone создаёт копию конфига. Пустой newID — ID выберет сервер.
func (c *Configs) Clone(ctx context.Context, id, newID string) (string, error) {
	config, err := c.mgr.Get(ctx, id)
	if err != nil {
		return "", err
	}

	clone := withField(config, "id", newID)
	if newID == "" {
		delete(clone, "id")
	}

	var created string
	err = c.s.track(ctx, "config.clone", id, func() error {
		var err error
		created, err = c.mgr.Create(ctx, clone)
		return err
	})
	return created, err
}

// Find возвращает конфиги по фильтру.
func (c *Configs) Find(ctx context.Context, q provd.Query) ([]provd.Document, error) {
	return c.mgr.List(ctx, q)
}

// Count возвращает число конфигов.
func (c *Configs) Count(ctx context.Context) (int, error) {
	configs, err := c.mgr.List(ctx, provd.Query{Fields: []string{"id"}})
	return len(configs), err
}

// Item возвращает конфиг как объект для точечных изменений.
func (c *Configs) Item(id string) *Config {
	return &Config{id: id, configs: c}
}

// Config — один конфиг.
type Config struct {
	id      string
	configs *Configs
}

// ID возвращает идентификатор конфига.
func (c *Config) ID() string {
	return c.id
}

// Get возвращает конфиг.
func (c *Config) Get(ctx context.Context) (provd.Document, error) {
	return c.configs.mgr.Get(ctx, c.id)
}

// GetRaw возвращает конфиг, собранный с учётом родителей.
func (c *Config) GetRaw(ctx context.Context) (provd.Document, error) {
	return c.configs.mgr.GetRaw(ctx, c.id)
}

// SetConfig накладывает значения с точечными ключами на raw_config.
// Конфиг отправляется на сервер, только если что-то изменилось.
func (c *Config) SetConfig(ctx context.Context, values map[string]any) (bool, error) {
	return c.modifyRaw(ctx, "config.set", func(raw dotted.Tree) {
		raw.Merge(dotted.Expand(values))
	})
}

// UnsetConfig удаляет ключи из raw_config. Несуществующие ключи пропускаются.
func (c *Config) UnsetConfig(ctx context.Context, keys ...string) (bool, error) {
	return c.modifyRaw(ctx, "config.unset", func(raw dotted.Tree) {
		for _, key := range keys {
			raw.Unset(key)
		}
	})
}

func (c *Config) modifyRaw(ctx context.Context, action string, modify func(dotted.Tree)) (bool, error) {
	config, err := c.configs.mgr.Get(ctx, c.id)
	if err != nil {
		return false, err
	}

	old := rawConfig(config)
	raw := dotted.FromMap(old)
	modify(raw)

	updated := raw.Map()
	if jsonEqual(old, updated) {
		return false, nil
	}

	err = c.configs.s.track(ctx, action, c.id, func() error {
		return c.configs.mgr.Update(ctx, withField(config, "raw_config", updated))
	})
	return err == nil, err
}

// SetParents заменяет список родителей конфига.
func (c *Config) SetParents(ctx context.Context, parents ...string) error {
	config, err := c.configs.mgr.Get(ctx, c.id)
	if err != nil {
		return err
	}

	parentIDs := make([]any, len(parents))
	for i, p := range parents {
		parentIDs[i] = p
	}

	return c.configs.s.track(ctx, "config.set-parents", c.id, func() error {
		return c.configs.mgr.Update(ctx, withField(config, "parent_ids", parentIDs))
	})
}

func stringField(doc map[string]any, key string) string {
	if v, ok := doc[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}
