package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background parsing.
// Example usage:
//
//	scheduler := NewScheduler(settingsCache, parser, current, memo, httpClient)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(scheduler.NewParseTask(true))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewParseTask(force bool) TaskInterface
	NewReloadSettingsTask() TaskInterface
}
