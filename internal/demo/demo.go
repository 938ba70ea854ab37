// Package demo runs the weather station scenario end to end.
package demo

import (
	"context"
	"io"
	"os"

	"go.llib.dev/frameless/pkg/env"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/patterns/adapter/boltjournal"
	"go.llib.dev/patterns/pkg/notifyhub"
	"go.llib.dev/patterns/pkg/weather"
)

type Config struct {
	StationName string `env:"WEATHERSTATION_NAME" default:"weather-station"`
	Policy      string `env:"WEATHERSTATION_POLICY" default:"best-effort" enum:"best-effort,fail-fast,"`
	// JournalPath is optional, when set every round is also written to a bolt journal.
	JournalPath string `env:"WEATHERSTATION_JOURNAL_PATH"`
	LogLevel    string `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error,fatal,"`
}

// LoadConfig reads the Config from the environment.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.Load(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Scenario is the sequence of measurements the station receives.
var Scenario = []weather.Measurements{
	{Temperature: 25.5, Humidity: 60.0, Pressure: 1013.2},
	{Temperature: 24.8, Humidity: 58.0, Pressure: 1014.5},
}

// Run registers two displays writing to out, then feeds the Scenario into the station.
// A nil logger logs to stderr, so log lines never mix with the display output.
func Run(ctx context.Context, c Config, out io.Writer, l *logging.Logger) (rErr error) {
	if l == nil {
		l = &logging.Logger{Out: os.Stderr}
	}
	station := &weather.Station{
		Name: c.StationName,
		Hub: notifyhub.Hub[weather.Measurements]{
			Policy: notifyhub.Policy(c.Policy),
			Logger: l,
		},
	}
	for i := 0; i < 2; i++ {
		if err := station.Register(&weather.Display{Out: out}); err != nil {
			return err
		}
	}

	if c.JournalPath != "" {
		journal, err := boltjournal.Open(c.JournalPath)
		if err != nil {
			return err
		}
		defer errorkit.Finish(&rErr, journal.Close)
		journal.Station = station.Name
		if err := station.Register(journal); err != nil {
			return err
		}
	}

	l.Info(ctx, "weather station started",
		logging.Field("station", station.Name),
		logging.Field("observers", station.Hub.Len()))

	for _, m := range Scenario {
		if err := station.SetMeasurements(ctx, m); err != nil {
			return err
		}
	}

	l.Debug(ctx, "weather station finished",
		logging.Field("station", station.Name),
		logging.Field("rounds", len(Scenario)))
	return nil
}
