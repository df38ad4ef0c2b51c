package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

// ReloadSettingsTask re-reads the settings file and, when given a follow-up
// parse, runs it so the new settings take effect immediately.
type ReloadSettingsTask struct {
	Task
	settings *feed.SettingsCache
	memo     *Memo
	reparse  TaskInterface
}

func NewReloadSettingsTask(source string, settings *feed.SettingsCache, memo *Memo, reparse TaskInterface) *ReloadSettingsTask {
	return &ReloadSettingsTask{
		Task:     NewTask(TaskTypeReloadSettings, source),
		settings: settings,
		memo:     memo,
		reparse:  reparse,
	}
}

func (t *ReloadSettingsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	settings, err := t.settings.LoadSettings()
	if err != nil {
		slog.Error("Task failed", "type", "ReloadSettings", "source", t.Source, "error", err)
		return fmt.Errorf("failed to reload settings: %w", err)
	}

	// Memoised states were assembled with the old settings
	t.memo.Purge()

	slog.Info("Task completed",
		"type", "ReloadSettings",
		"source", t.Source,
		"duration", t.GetDuration(),
		"sponsorship_position", settings.Sponsorship.Position,
		"headline_posts", settings.Headlines)

	if t.reparse != nil {
		t.reparse.Start()
		return t.reparse.Execute(ctx)
	}
	return nil
}
