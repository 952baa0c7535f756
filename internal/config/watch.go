package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch reads the file at configPath and calls fn with the reloaded
// configuration every time the file is written. A reload that fails to parse
// or validate reaches fn as an error. fn runs on the watcher goroutine.
//
// binds are reapplied on every reload so command-line overrides keep winning.
func Watch(configPath string, fn func(*Config, error), binds ...Bind) error {
	if configPath == "" {
		return fmt.Errorf("config: watch needs a config file")
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		for _, b := range binds {
			b(v)
		}
		fn(unmarshalAndFinalize(v))
	})
	v.WatchConfig()
	return nil
}
