package oip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// DefaultInterval — пауза между опросами операции.
const DefaultInterval = time.Second

// deleteTimeout ограничивает освобождение операции после отмены контекста.
const deleteTimeout = 10 * time.Second

// Display опрашивает операцию и выводит её статус.
type Display struct {
	// Interval — пауза между вызовами Update. 0 — DefaultInterval.
	Interval time.Duration

	// Out — куда писать статус. nil — os.Stdout.
	Out io.Writer

	// Logger — логгер для отладочных сообщений. nil — slog.Default().
	Logger *slog.Logger

	// Sleep ждёт между опросами. nil — таймер с учётом ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewDisplay создаёт Display с интервалом по умолчанию.
func NewDisplay(out io.Writer, logger *slog.Logger) *Display {
	return &Display{
		Interval: DefaultInterval,
		Out:      out,
		Logger:   logger,
	}
}

// Progress опрашивает операцию до финального состояния и рисует дерево статуса.
//
// Активная позиция не откатывается назад: если между опросами
// FindActive вернул более раннюю позицию (например, ребёнок завершился,
// а следующий ещё не стартовал), ничего не рисуется до следующего опроса
// (см. TestProgress_FrontierDoesNotMoveBack).
// Ошибки Update возвращаются как есть; Delete вызывает вызывающая сторона.
func (d *Display) Progress(ctx context.Context, h Handle) error {
	out := d.out()
	logger := d.logger()
	prev := Spec{Path: Path{}}

	for {
		if err := h.Update(ctx); err != nil {
			return fmt.Errorf("update operation: %w", err)
		}

		cur := FindActive(h)
		forward, err := advances(h, prev, cur)
		if err != nil {
			return err
		}

		if forward {
			if err := Render(out, h, prev, cur); err != nil {
				return err
			}
		} else {
			logger.Debug("operation frontier moved back, keeping position",
				"previous", prev.String(),
				"current", cur.String(),
			)
		}

		if h.State().IsTerminal() {
			if !cur.Equal(RootDone) {
				return fmt.Errorf("%w: root is %s but active position is %s", ErrInconsistentTree, h.State(), cur)
			}
			break
		}

		if forward {
			prev = cur
		}

		if err := d.sleep(ctx); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(out, "\n"); err != nil {
		return fmt.Errorf("write progress line: %w", err)
	}
	return nil
}

// Silent опрашивает операцию без промежуточного вывода и печатает
// одну итоговую строку для корня.
func (d *Display) Silent(ctx context.Context, h Handle) error {
	for {
		if err := h.Update(ctx); err != nil {
			return fmt.Errorf("update operation: %w", err)
		}
		if h.State().IsTerminal() {
			break
		}
		if err := d.sleep(ctx); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(d.out(), FormatLine(h, Path{})+"\n"); err != nil {
		return fmt.Errorf("write status line: %w", err)
	}
	return nil
}

// Follow вызывает fn и затем всегда освобождает операцию через Delete,
// в том числе при ошибке, панике и отмене ctx.
func Follow(ctx context.Context, h Handle, fn func(context.Context, Handle) error) (err error) {
	defer func() {
		// Отменённый ctx не должен мешать освобождению операции на сервере.
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
		defer cancel()

		if delErr := h.Delete(delCtx); delErr != nil {
			err = errors.Join(err, fmt.Errorf("delete operation: %w", delErr))
		}
	}()

	return fn(ctx, h)
}

// advances проверяет, что cur не раньше prev в таблице текущего дерева.
func advances(root Operation, prev, cur Spec) (bool, error) {
	table := Flatten(root)

	prevIdx, err := indexOf(table, prev)
	if err != nil {
		return false, err
	}
	curIdx, err := indexOf(table, cur)
	if err != nil {
		return false, err
	}

	return curIdx >= prevIdx, nil
}

func (d *Display) sleep(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if d.Sleep != nil {
		return d.Sleep(ctx, interval)
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Display) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

func (d *Display) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
