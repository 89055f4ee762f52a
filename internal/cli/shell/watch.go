// Package shell provides the interactive mode of the sessiondx CLI.
package shell

import (
	"github.com/jperezcano/sessiondx-go/internal/infra/confloader"
	"github.com/jperezcano/sessiondx-go/internal/telemetry/logger"
)

// watchLogLevel watches the config file and applies log.level changes to
// the running shell without a restart. It returns a stop function.
func watchLogLevel(path string) (func(), error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Default()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		loader := confloader.NewLoader()
		if err := loader.LoadFile(changed); err != nil {
			logger.Warn("config reload failed", "path", changed, "error", err)
			return
		}
		if level := loader.GetString("log.level"); level != "" {
			logger.SetLevel(level)
			logger.Info("log level updated", "level", level)
		}
	})
	watcher.StartAsync()

	return func() { _ = watcher.Stop() }, nil
}
