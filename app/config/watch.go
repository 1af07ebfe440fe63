package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Watch re-applies the log level whenever the config file changes.
// Other settings are read once at start-up.
func Watch(v *viper.Viper, log *logrus.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		ApplyLevel(v, log)
	})
	v.WatchConfig()
}

// ApplyLevel sets log's level from the current log.level setting.
func ApplyLevel(v *viper.Viper, log *logrus.Logger) {
	level, err := logrus.ParseLevel(v.GetString("log.level"))
	if err != nil {
		log.WithError(err).Warn("ignoring log level from config")
		return
	}
	if level != log.GetLevel() {
		log.SetLevel(level)
		log.WithField("level", level.String()).Info("log level changed")
	}
}
