package admin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/shaiso/provd-cli/internal/audit"
	"github.com/shaiso/provd-cli/internal/oip"
	"github.com/shaiso/provd-cli/internal/provd"
)

var errNotFound = errors.New("not found")

// fakeOp — операция, которая проходит заданные состояния по одному за Update.
type fakeOp struct {
	*oip.Snapshot
	location  string
	states    []oip.State
	updates   int
	deletes   int
	updateErr error
}

func newFakeOp(location string, states ...oip.State) *fakeOp {
	return &fakeOp{
		Snapshot: oip.NewSnapshot("", oip.StateWaiting),
		location: location,
		states:   states,
	}
}

func (o *fakeOp) Update(context.Context) error {
	if o.updateErr != nil {
		return o.updateErr
	}
	if o.updates < len(o.states) {
		o.SetState(o.states[o.updates])
	}
	o.updates++
	return nil
}

func (o *fakeOp) Delete(context.Context) error {
	o.deletes++
	return nil
}

func (o *fakeOp) Location() string { return o.location }

// store — общие документы для fakeConfigs и fakeDevices.
type store struct {
	docs    map[string]provd.Document
	updates int
	nextID  int
}

func newStore(docs ...provd.Document) *store {
	s := &store{docs: make(map[string]provd.Document)}
	for _, doc := range docs {
		s.docs[doc["id"].(string)] = doc
	}
	return s
}

func (s *store) list(q provd.Query) []provd.Document {
	var result []provd.Document
	for _, id := range sortedKeys(s.docs) {
		doc := s.docs[id]
		match := true
		for k, v := range q.Selector {
			if doc[k] != v {
				match = false
			}
		}
		if match {
			result = append(result, doc)
		}
	}
	return result
}

func (s *store) get(id string) (provd.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, errNotFound
	}
	return maps.Clone(doc), nil
}

func (s *store) create(doc provd.Document) string {
	id, _ := doc["id"].(string)
	if id == "" {
		s.nextID++
		id = "generated-" + string(rune('0'+s.nextID))
		doc = maps.Clone(doc)
		doc["id"] = id
	}
	s.docs[id] = doc
	return id
}

func (s *store) update(doc provd.Document) error {
	id, _ := doc["id"].(string)
	if _, ok := s.docs[id]; !ok {
		return errNotFound
	}
	s.docs[id] = doc
	s.updates++
	return nil
}

type fakeConfigs struct {
	*store
	deleted []string
}

func (f *fakeConfigs) List(_ context.Context, q provd.Query) ([]provd.Document, error) {
	return f.list(q), nil
}
func (f *fakeConfigs) Get(_ context.Context, id string) (provd.Document, error) { return f.get(id) }
func (f *fakeConfigs) GetRaw(_ context.Context, id string) (provd.Document, error) {
	doc, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return rawConfig(doc), nil
}
func (f *fakeConfigs) Create(_ context.Context, doc provd.Document) (string, error) {
	return f.create(doc), nil
}
func (f *fakeConfigs) Update(_ context.Context, doc provd.Document) error { return f.update(doc) }
func (f *fakeConfigs) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return nil
}
func (f *fakeConfigs) Autocreate(context.Context) (string, error) {
	return f.create(provd.Document{"transient": true}), nil
}

type fakeDevices struct {
	*store
	ops          map[string]*fakeOp
	reconfigured []string
	synced       []string
	deleted      []string
}

func (f *fakeDevices) List(_ context.Context, q provd.Query) ([]provd.Document, error) {
	return f.list(q), nil
}
func (f *fakeDevices) Get(_ context.Context, id string) (provd.Document, error) { return f.get(id) }
func (f *fakeDevices) Create(_ context.Context, doc provd.Document) (string, error) {
	return f.create(doc), nil
}
func (f *fakeDevices) Update(_ context.Context, doc provd.Document) error { return f.update(doc) }
func (f *fakeDevices) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return nil
}
func (f *fakeDevices) Reconfigure(_ context.Context, id string) error {
	f.reconfigured = append(f.reconfigured, id)
	return nil
}
func (f *fakeDevices) Synchronize(_ context.Context, id string) (Operation, error) {
	f.synced = append(f.synced, id)
	if op, ok := f.ops[id]; ok {
		return op, nil
	}
	op := newFakeOp("/operation/"+id, oip.StateProgress, oip.StateSuccess)
	if f.ops == nil {
		f.ops = make(map[string]*fakeOp)
	}
	f.ops[id] = op
	return op, nil
}

type fakePlugins struct {
	installed   map[string]provd.Document
	installable map[string]provd.Document
	pkgs        map[string]map[string]provd.Document
	op          *fakeOp
	calls       []string
}

func (f *fakePlugins) record(call string) { f.calls = append(f.calls, call) }

func (f *fakePlugins) next() *fakeOp {
	if f.op != nil {
		return f.op
	}
	return newFakeOp("/operation/1", oip.StateSuccess)
}

func (f *fakePlugins) Install(_ context.Context, id string) (Operation, error) {
	f.record("install " + id)
	return f.next(), nil
}
func (f *fakePlugins) Upgrade(_ context.Context, id string) (Operation, error) {
	f.record("upgrade " + id)
	return f.next(), nil
}
func (f *fakePlugins) Uninstall(_ context.Context, id string) error {
	f.record("uninstall " + id)
	return nil
}
func (f *fakePlugins) UpdateIndex(context.Context) (Operation, error) {
	f.record("update")
	return f.next(), nil
}
func (f *fakePlugins) Reload(_ context.Context, id string) error {
	f.record("reload " + id)
	return nil
}
func (f *fakePlugins) Installed(context.Context) (map[string]provd.Document, error) {
	return f.installed, nil
}
func (f *fakePlugins) Installable(context.Context) (map[string]provd.Document, error) {
	return f.installable, nil
}
func (f *fakePlugins) InstallPackage(_ context.Context, plugin, pkg string) (Operation, error) {
	f.record("install-pkg " + plugin + "/" + pkg)
	return f.next(), nil
}
func (f *fakePlugins) UpgradePackage(_ context.Context, plugin, pkg string) (Operation, error) {
	f.record("upgrade-pkg " + plugin + "/" + pkg)
	return f.next(), nil
}
func (f *fakePlugins) UninstallPackage(_ context.Context, plugin, pkg string) error {
	f.record("uninstall-pkg " + plugin + "/" + pkg)
	return nil
}
func (f *fakePlugins) PackagesInstalled(_ context.Context, plugin string) (map[string]provd.Document, error) {
	return f.pkgs[plugin], nil
}
func (f *fakePlugins) PackagesInstallable(_ context.Context, plugin string) (map[string]provd.Document, error) {
	return f.pkgs[plugin], nil
}

type fakeParams struct {
	values map[string]any
}

func (f *fakeParams) List(context.Context) ([]provd.ParamInfo, error) {
	var infos []provd.ParamInfo
	for k, v := range f.values {
		infos = append(infos, provd.ParamInfo{ID: k, Value: v})
	}
	return infos, nil
}
func (f *fakeParams) Get(_ context.Context, key string) (any, error) { return f.values[key], nil }
func (f *fakeParams) Set(_ context.Context, key string, value any) error {
	if value == nil {
		delete(f.values, key)
		return nil
	}
	f.values[key] = value
	return nil
}

type memorySink struct {
	events []audit.Event
}

func (s *memorySink) Write(_ context.Context, ev audit.Event) error {
	s.events = append(s.events, ev)
	return nil
}

type opCounter map[string]int

func (c opCounter) ObserveOperation(kind, state string) { c[kind+" "+state]++ }

// fixture — Session на фейковых менеджерах.
type fixture struct {
	session *Session
	configs *fakeConfigs
	devices *fakeDevices
	plugins *fakePlugins
	params  *fakeParams
	sink    *memorySink
	ops     opCounter
	out     *bytes.Buffer

	// slept — паузы между опросами операций.
	slept []time.Duration
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		configs: &fakeConfigs{store: newStore()},
		devices: &fakeDevices{store: newStore()},
		plugins: &fakePlugins{},
		params:  &fakeParams{values: map[string]any{}},
		sink:    &memorySink{},
		ops:     opCounter{},
		out:     &bytes.Buffer{},
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f.session = NewSession(SessionConfig{
		Configs: f.configs,
		Devices: f.devices,
		Plugins: f.plugins,
		Params:  f.params,
		Options: opts,
		Out:     f.out,
		Logger:  logger,
		Audit:   audit.NewRecorder(logger, f.sink),
		Metrics: f.ops,
		Sleep: func(_ context.Context, d time.Duration) error {
			f.slept = append(f.slept, d)
			return nil
		},
	})
	return f
}

func (f *fixture) actions() []string {
	var actions []string
	for _, ev := range f.sink.events {
		actions = append(actions, ev.Action+" "+ev.Target+" "+string(ev.Outcome))
	}
	return actions
}
