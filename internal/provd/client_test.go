package provd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/provd-cli/internal/oip"
)

type recordedObserver struct {
	mu     sync.Mutex
	calls  int
	status []int
}

func (o *recordedObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.status = append(o.status, status)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordedObserver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	obs := &recordedObserver{}
	client := NewClient(Options{
		BaseURL:  server.URL + "/provd",
		Token:    "secret",
		Observer: obs,
	})
	return client, obs
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		host   string
		port   int
		https  bool
		prefix string
		want   string
	}{
		{"localhost", 8666, false, "/provd", "http://localhost:8666/provd"},
		{"10.0.0.1", 443, true, "provd/", "https://10.0.0.1:443/provd"},
		{"h", 80, false, "", "http://h:80"},
	}

	for _, tt := range tests {
		if got := BaseURL(tt.host, tt.port, tt.https, tt.prefix); got != tt.want {
			t.Errorf("BaseURL(%s, %d, %t, %q): expected %s, got %s", tt.host, tt.port, tt.https, tt.prefix, tt.want, got)
		}
	}
}

func TestDevices_ListWithQuery(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/provd/dev_mgr/devices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Auth-Token") != "secret" {
			t.Errorf("missing token header")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}

		var selector map[string]any
		if err := json.Unmarshal([]byte(r.URL.Query().Get("q")), &selector); err != nil {
			t.Errorf("bad q param: %v", err)
		}
		if selector["plugin"] != "xivo-aastra" {
			t.Errorf("unexpected selector %v", selector)
		}
		if r.URL.Query().Get("fields") != "id,mac" {
			t.Errorf("unexpected fields %q", r.URL.Query().Get("fields"))
		}
		if r.URL.Query().Get("recurse") != "true" {
			t.Errorf("unexpected recurse %q", r.URL.Query().Get("recurse"))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"devices": []map[string]any{{"id": "d1", "mac": "00:11:22:33:44:55"}},
		})
	})

	devices, err := client.Devices().List(context.Background(), Query{
		Selector: map[string]any{"plugin": "xivo-aastra"},
		Fields:   []string{"id", "mac"},
		Recurse:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 1 || devices[0]["id"] != "d1" {
		t.Errorf("unexpected devices %v", devices)
	}
	if obs.calls != 1 || obs.status[0] != http.StatusOK {
		t.Errorf("observer not called correctly: %+v", obs)
	}
}

func TestConfigs_CreateAndUpdate(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)

		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": "guest"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	id, err := client.Configs().Create(context.Background(), Document{"id": "guest", "parent_ids": []any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "guest" {
		t.Errorf("expected id guest, got %s", id)
	}
	if gotContentType != ContentType {
		t.Errorf("unexpected content type %s", gotContentType)
	}
	if _, ok := gotBody["config"]; !ok {
		t.Errorf("body should be wrapped in config: %v", gotBody)
	}

	err = client.Configs().Update(context.Background(), Document{"id": "a b", "raw_config": map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/provd/cfg_mgr/configs/a b" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}

	err = client.Configs().Update(context.Background(), Document{"raw_config": map[string]any{}})
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such device\n"))
	})

	_, err := client.Devices().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "no such device" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Error(), "HTTP 404") {
		t.Errorf("unexpected error text %q", apiErr.Error())
	}
}

func TestParams_GetSet(t *testing.T) {
	var stored any = "fr_FR"

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/provd/configure/locale" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"param": map[string]any{"value": stored}})
		case http.MethodPut:
			var body struct {
				Param struct {
					Value any `json:"value"`
				} `json:"param"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			stored = body.Param.Value
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	value, err := client.Params().Get(ctx, "locale")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "fr_FR" {
		t.Errorf("expected fr_FR, got %v", value)
	}

	if err := client.Params().Set(ctx, "locale", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != nil {
		t.Errorf("expected param to be unset, got %v", stored)
	}
}

func TestOperation_Lifecycle(t *testing.T) {
	statuses := []string{
		"sync|progress(download|progress;1/2)",
		"sync|success(download|success;2/2)",
	}
	var polls, deletes int

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/provd/dev_mgr/synchronize":
			w.Header().Set("Location", "/provd/operation/42")
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/provd/operation/42":
			json.NewEncoder(w).Encode(map[string]string{"status": statuses[polls]})
			polls++
		case r.Method == http.MethodDelete && r.URL.Path == "/provd/operation/42":
			deletes++
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	ctx := context.Background()
	op, err := client.Devices().Synchronize(ctx, "dev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(op.Location(), "/provd/operation/42") {
		t.Errorf("unexpected location %s", op.Location())
	}
	if op.State() != oip.StateWaiting {
		t.Errorf("expected waiting before first update, got %s", op.State())
	}

	if err := op.Update(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Label() != "sync" || op.State() != oip.StateProgress {
		t.Errorf("unexpected state %q %s", op.Label(), op.State())
	}
	if len(op.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(op.Children()))
	}

	if err := op.Update(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.State() != oip.StateSuccess {
		t.Errorf("expected success, got %s", op.State())
	}

	if err := op.Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := op.Delete(ctx); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if deletes != 1 {
		t.Errorf("expected 1 delete, got %d", deletes)
	}
}

func TestOperation_DeleteRetriesAfterFailure(t *testing.T) {
	var deletes int

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Location", "/provd/operation/9")
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			deletes++
			if deletes == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	op, err := client.Plugins().UpdateIndex(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := op.Delete(ctx); err == nil {
		t.Fatal("expected error from failed delete")
	}
	if err := op.Delete(ctx); err != nil {
		t.Fatalf("retry after failure should reach the server: %v", err)
	}
	if err := op.Delete(ctx); err != nil {
		t.Fatalf("delete after success should be a no-op: %v", err)
	}
	if deletes != 2 {
		t.Errorf("expected 2 delete requests, got %d", deletes)
	}
}

func TestOperation_NoLocation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := client.Plugins().Install(context.Background(), "xivo-cisco-sccp")
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}

func TestOperation_MalformedStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Location", "http://"+r.Host+"/provd/operation/7")
			w.WriteHeader(http.StatusCreated)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "exploding"})
	})

	op, err := client.Plugins().UpdateIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := op.Update(context.Background()); !errors.Is(err, oip.ErrMalformedStatus) {
		t.Fatalf("expected ErrMalformedStatus, got %v", err)
	}
}

func TestTLSConfig(t *testing.T) {
	cfg, err := TLSConfig("false")
	if err != nil || !cfg.InsecureSkipVerify {
		t.Errorf("false should skip verification: %v %v", cfg, err)
	}

	cfg, err = TLSConfig("true")
	if err != nil || cfg.InsecureSkipVerify {
		t.Errorf("true should verify: %v %v", cfg, err)
	}

	if _, err := TLSConfig("/nonexistent/ca.pem"); err == nil {
		t.Error("expected error for missing certificate file")
	}
}
