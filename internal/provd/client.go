package provd

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType — тип содержимого REST API provd.
const ContentType = "application/vnd.proformatique.provd+json"

// DefaultTimeout — таймаут HTTP-запроса по умолчанию.
const DefaultTimeout = 30 * time.Second

// maxErrorBody ограничивает текст ошибки из тела ответа.
const maxErrorBody = 512

// Document — JSON-документ provd (конфиг, устройство, пакет).
type Document = map[string]any

// Query — фильтр и список полей для list-запросов.
type Query struct {
	// Selector — условия отбора, например {"plugin": "xivo-aastra-3.3.1"}.
	Selector map[string]any

	// Fields — возвращаемые поля. Пусто — все поля.
	Fields []string

	// Recurse — включать устройства и конфиги дочерних тенантов.
	Recurse bool
}

// Observer получает сведения о каждом HTTP-запросе (для метрик).
type Observer interface {
	ObserveRequest(method string, status int, duration time.Duration)
}

// Options — параметры клиента.
type Options struct {
	// BaseURL — например "https://provd.example:8666/provd".
	BaseURL string

	// Token — значение X-Auth-Token. Пусто — без аутентификации.
	Token string

	// Timeout — таймаут запроса. 0 — DefaultTimeout.
	Timeout time.Duration

	// TLSConfig — настройки TLS для https.
	TLSConfig *tls.Config

	Logger   *slog.Logger
	Observer Observer
}

// Client — HTTP-клиент для REST API provd.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// NewClient создаёт клиент.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.TLSConfig != nil {
		transport.TLSClientConfig = opts.TLSConfig
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger:   logger,
		observer: opts.Observer,
	}
}

// BaseURL собирает базовый URL из адреса сервера.
func BaseURL(host string, port int, https bool, prefix string) string {
	scheme := "http"
	if https {
		scheme = "https"
	}
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return scheme + "://" + host + ":" + strconv.Itoa(port) + strings.TrimRight(prefix, "/")
}

// TLSConfig строит настройки TLS по значению verify:
// "" или "false" — без проверки сертификата, "true" — системные CA,
// иначе — путь к PEM-файлу с сертификатом.
func TLSConfig(verify string) (*tls.Config, error) {
	switch strings.ToLower(verify) {
	case "", "false", "no", "0":
		return &tls.Config{InsecureSkipVerify: true}, nil
	case "true", "yes", "1":
		return &tls.Config{}, nil
	}

	pem, err := os.ReadFile(verify)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %s", verify)
	}
	return &tls.Config{RootCAs: pool}, nil
}

// Configs возвращает менеджер конфигов.
func (c *Client) Configs() *ConfigManager { return &ConfigManager{c: c} }

// Devices возвращает менеджер устройств.
func (c *Client) Devices() *DeviceManager { return &DeviceManager{c: c} }

// Plugins возвращает менеджер плагинов.
func (c *Client) Plugins() *PluginManager { return &PluginManager{c: c} }

// Params возвращает менеджер параметров.
func (c *Client) Params() *ParamManager { return &ParamManager{c: c} }

// --- HTTP helpers ---

// getField выполняет GET и извлекает поле key из ответа.
func (c *Client) getField(ctx context.Context, path string, params url.Values, key string, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.doField(ctx, http.MethodGet, path, nil, key, result)
}

// postField выполняет POST и извлекает поле key из ответа.
func (c *Client) postField(ctx context.Context, path string, body any, key string, result any) error {
	return c.doField(ctx, http.MethodPost, path, body, key, result)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	return c.doField(ctx, http.MethodPost, path, body, "", nil)
}

func (c *Client) put(ctx context.Context, path string, body any) error {
	return c.doField(ctx, http.MethodPut, path, body, "", nil)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doField(ctx, http.MethodDelete, path, nil, "", nil)
}

// postOperation запускает асинхронную операцию и возвращает её handle.
func (c *Client) postOperation(ctx context.Context, path string, body any) (*Operation, error) {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("%w: POST %s", ErrNoLocation, path)
	}

	resolved, err := c.resolve(location)
	if err != nil {
		return nil, err
	}
	return newOperation(c, resolved), nil
}

func (c *Client) doField(ctx context.Context, method, path string, body any, key string, result any) error {
	resp, err := c.do(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return decodeField(resp.Body, key, result)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", ContentType)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", ContentType)
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, elapsed)
	}

	c.logger.Debug("provd request",
		"method", method,
		"url", rawURL,
		"status", status,
		"duration", elapsed,
		"request_id", requestID,
	)

	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	return resp, nil
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:  resp.Request.Method,
		Path:    resp.Request.URL.Path,
		Status:  resp.StatusCode,
		Message: strings.TrimSpace(string(data)),
	}
}

// resolve приводит Location к абсолютному URL относительно baseURL.
func (c *Client) resolve(location string) (string, error) {
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse location %q: %w", location, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// decodeField разбирает объект ответа и извлекает поле key.
// Пустой key — весь объект.
func decodeField(r io.Reader, key string, result any) error {
	if key == "" {
		if err := json.NewDecoder(r).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	raw, ok := envelope[key]
	if !ok {
		return fmt.Errorf("failed to decode response: missing %q", key)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

// queryParams кодирует Query в параметры q и fields.
func queryParams(q Query) (url.Values, error) {
	params := url.Values{}
	if len(q.Selector) > 0 {
		data, err := json.Marshal(q.Selector)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal selector: %w", err)
		}
		params.Set("q", string(data))
	}
	if len(q.Fields) > 0 {
		params.Set("fields", strings.Join(q.Fields, ","))
	}
	if q.Recurse {
		params.Set("recurse", "true")
	}
	return params, nil
}

// documentID возвращает строковое поле id документа.
func documentID(doc Document) (string, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return "", ErrMissingID
	}
	return id, nil
}
