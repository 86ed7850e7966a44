package maint

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shaiso/provd-cli/internal/admin"
	"github.com/shaiso/provd-cli/internal/provd"
)

// Confirm задаёт пользователю вопрос да/нет.
type Confirm func(question string) (bool, error)

// PromptConfirm читает ответ из r. Пустой ответ, "Y" и "y" — согласие.
func PromptConfirm(r io.Reader, w io.Writer) Confirm {
	reader := bufio.NewReader(r)
	return func(question string) (bool, error) {
		fmt.Fprintf(w, "%s [Y/n] ", question)

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "", "Y", "y":
			return true, nil
		}
		return false, nil
	}
}

// AlwaysConfirm соглашается без вопросов (флаг --yes).
func AlwaysConfirm(string) (bool, error) {
	return true, nil
}

// MassUpdateDevicesPlugin переводит все устройства с oldPlugin на newPlugin
// и при synchronize синхронизирует каждое. Если какой-то из плагинов не
// установлен, спрашивает подтверждение. При recurse учитываются и
// устройства дочерних тенантов. Возвращает число обновлённых устройств.
func MassUpdateDevicesPlugin(ctx context.Context, s *admin.Session, oldPlugin, newPlugin string, synchronize, recurse bool, confirm Confirm) (int, error) {
	installed, err := InstalledPlugins(ctx, s)
	if err != nil {
		return 0, err
	}

	missing := difference([]string{oldPlugin, newPlugin}, installed)
	for _, plugin := range missing {
		s.Logger().Warn("plugin is not installed", "plugin", plugin)
	}
	if len(missing) > 0 {
		ok, err := confirm("Do you want to proceed anyway?")
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrAborted
		}
	}

	devices, err := s.Devices.Find(ctx, provd.Query{
		Selector: map[string]any{"plugin": oldPlugin},
		Recurse:  recurse,
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, device := range devices {
		id, _ := device["id"].(string)
		device["plugin"] = newPlugin

		fmt.Fprintf(s.Out(), "Updating device %s\n", id)
		if err := s.Devices.Update(ctx, device); err != nil {
			return updated, err
		}
		updated++

		if synchronize {
			fmt.Fprintf(s.Out(), "Synchronizing device %s\n", id)
			if _, err := s.Devices.Synchronize(ctx, id); err != nil {
				return updated, err
			}
		}
		fmt.Fprintln(s.Out())
	}
	return updated, nil
}

// MassSynchronize синхронизирует все устройства по очереди.
// При recurse учитываются и устройства дочерних тенантов.
func MassSynchronize(ctx context.Context, s *admin.Session, recurse bool) (int, error) {
	q := idOnly(nil)
	q.Recurse = recurse
	devices, err := s.Devices.Find(ctx, q)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, id := range field(devices, "id") {
		fmt.Fprintf(s.Out(), "Synchronizing device %s\n", id)
		if _, err := s.Devices.Synchronize(ctx, id); err != nil {
			return synced, err
		}
		synced++
		fmt.Fprintln(s.Out())
	}
	return synced, nil
}

// RemoveTransientConfigs удаляет временные конфиги, которые не использует
// ни одно устройство.
func RemoveTransientConfigs(ctx context.Context, s *admin.Session) (int, error) {
	configs, err := s.Configs.Find(ctx, idOnly(map[string]any{"transient": true}))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range field(configs, "id") {
		users, err := s.Devices.Find(ctx, idOnly(map[string]any{"config": id}))
		if err != nil {
			return removed, err
		}
		if len(users) > 0 {
			continue
		}

		fmt.Fprintf(s.Out(), "Removing config %s\n", id)
		if err := s.Configs.Remove(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}

	fmt.Fprintf(s.Out(), "%d unused transient configs have been removed\n", removed)
	return removed, nil
}
