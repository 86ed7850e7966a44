package provd

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/shaiso/provd-cli/internal/oip"
)

// Operation — handle асинхронной операции provd.
//
// До первого Update операция считается ожидающей и не имеет детей.
type Operation struct {
	client   *Client
	location string

	mu      sync.Mutex
	snap    *oip.Snapshot
	deleted bool
}

var _ oip.Handle = (*Operation)(nil)

func newOperation(c *Client, location string) *Operation {
	return &Operation{
		client:   c,
		location: location,
		snap:     oip.NewSnapshot("", oip.StateWaiting),
	}
}

// Location возвращает URL операции на сервере.
func (o *Operation) Location() string {
	return o.location
}

// Update читает статус операции с сервера.
func (o *Operation) Update(ctx context.Context) error {
	resp, err := o.client.do(ctx, http.MethodGet, o.location, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := o.client.checkError(resp); err != nil {
		return err
	}

	var status string
	if err := decodeField(resp.Body, "status", &status); err != nil {
		return err
	}

	snap, err := oip.Parse(status)
	if err != nil {
		return fmt.Errorf("operation %s: %w", o.location, err)
	}

	o.mu.Lock()
	o.snap = snap
	o.mu.Unlock()
	return nil
}

// Delete освобождает операцию на сервере. После успешного вызова
// повторный ничего не делает; после ошибки запрос можно повторить.
func (o *Operation) Delete(ctx context.Context) error {
	o.mu.Lock()
	deleted := o.deleted
	o.mu.Unlock()
	if deleted {
		return nil
	}

	resp, err := o.client.do(ctx, http.MethodDelete, o.location, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := o.client.checkError(resp); err != nil {
		return err
	}

	o.mu.Lock()
	o.deleted = true
	o.mu.Unlock()
	return nil
}

func (o *Operation) current() *oip.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// State реализует oip.Operation.
func (o *Operation) State() oip.State { return o.current().State() }

// Label реализует oip.Operation.
func (o *Operation) Label() string { return o.current().Label() }

// Current реализует oip.Operation.
func (o *Operation) Current() (int, bool) { return o.current().Current() }

// End реализует oip.Operation.
func (o *Operation) End() (int, bool) { return o.current().End() }

// Children реализует oip.Operation.
func (o *Operation) Children() []oip.Operation { return o.current().Children() }
