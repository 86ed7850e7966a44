package provd

import (
	"context"
	"net/url"
)

// ParamInfo — описание параметра сервера.
type ParamInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// ParamManager — параметры сервера provd (configure).
type ParamManager struct {
	c *Client
}

type paramValue struct {
	Value any `json:"value"`
}

// List возвращает описание всех параметров.
func (m *ParamManager) List(ctx context.Context) ([]ParamInfo, error) {
	var params []ParamInfo
	err := m.c.getField(ctx, "/configure", nil, "params", &params)
	return params, err
}

// Get возвращает значение параметра. nil — параметр не задан.
func (m *ParamManager) Get(ctx context.Context, key string) (any, error) {
	var p paramValue
	err := m.c.getField(ctx, "/configure/"+url.PathEscape(key), nil, "param", &p)
	return p.Value, err
}

// Set задаёт значение параметра. nil сбрасывает параметр.
func (m *ParamManager) Set(ctx context.Context, key string, value any) error {
	return m.c.put(ctx, "/configure/"+url.PathEscape(key), map[string]any{"param": paramValue{Value: value}})
}
