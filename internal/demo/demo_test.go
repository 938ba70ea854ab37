package demo_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/patterns/adapter/boltjournal"
	"go.llib.dev/patterns/internal/demo"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
)

const expectedOutput = "Display: Temperature = 25.5°C, Humidity = 60%, Pressure = 1013.2 hPa\n" +
	"Display: Temperature = 25.5°C, Humidity = 60%, Pressure = 1013.2 hPa\n" +
	"Display: Temperature = 24.8°C, Humidity = 58%, Pressure = 1014.5 hPa\n" +
	"Display: Temperature = 24.8°C, Humidity = 58%, Pressure = 1014.5 hPa\n"

func TestRun(t *testing.T) {
	s := testcase.NewSpec(t)

	var (
		journalPath = testcase.LetValue(s, "")
		config      = testcase.Let(s, func(t *testcase.T) demo.Config {
			return demo.Config{
				StationName: t.Random.String(),
				Policy:      "best-effort",
				JournalPath: journalPath.Get(t),
			}
		})
		out = testcase.Let(s, func(t *testcase.T) *bytes.Buffer {
			return &bytes.Buffer{}
		})
	)
	act := func(t *testcase.T) error {
		l, _ := logging.Stub(t)
		return demo.Run(context.Background(), config.Get(t), out.Get(t), l)
	}

	s.Then("both displays print both rounds", func(t *testcase.T) {
		assert.Must(t).NoError(act(t))
		assert.Must(t).Equal(expectedOutput, out.Get(t).String())
	})

	s.When("a journal path is configured", func(s *testcase.Spec) {
		journalPath.Let(s, func(t *testcase.T) string {
			return filepath.Join(t.TempDir(), "journal.db")
		})
		s.Before(func(t *testcase.T) {
			if raceEnabled {
				t.Skip("boltdb/bolt v1.3.1 fails checkptr validation under -race")
			}
		})

		s.Then("every round is journaled as well", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))
			assert.Must(t).Equal(expectedOutput, out.Get(t).String())

			j, err := boltjournal.Open(journalPath.Get(t))
			assert.Must(t).NoError(err)
			defer j.Close()
			records, err := j.Records(context.Background())
			assert.Must(t).NoError(err)
			assert.Must(t).Equal(len(demo.Scenario), len(records))
			for i, rec := range records {
				assert.Must(t).Equal(demo.Scenario[i], rec.Measurements)
				assert.Must(t).Equal(config.Get(t).StationName, rec.Station)
			}
		})
	})
}

func TestRun_nilLoggerWritesToStderr(t *testing.T) {
	stderr, err := os.Create(filepath.Join(t.TempDir(), "stderr"))
	assert.NoError(t, err)
	defer stderr.Close()
	prevStderr := os.Stderr
	os.Stderr = stderr
	defer func() { os.Stderr = prevStderr }()

	out := &bytes.Buffer{}
	assert.NoError(t, demo.Run(context.Background(), demo.Config{StationName: "rooftop"}, out, nil))
	os.Stderr = prevStderr

	assert.Equal(t, expectedOutput, out.String())
	logs, err := os.ReadFile(stderr.Name())
	assert.NoError(t, err)
	assert.Contains(t, string(logs), "weather station started")
}

func TestLoadConfig(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("defaults", func(t *testcase.T) {
		t.UnsetEnv("WEATHERSTATION_NAME")
		t.UnsetEnv("WEATHERSTATION_POLICY")
		t.UnsetEnv("WEATHERSTATION_JOURNAL_PATH")
		t.UnsetEnv("LOG_LEVEL")

		c, err := demo.LoadConfig()
		assert.Must(t).NoError(err)
		assert.Must(t).Equal(demo.Config{
			StationName: "weather-station",
			Policy:      "best-effort",
			LogLevel:    "info",
		}, c)
	})

	s.Test("environment overrides", func(t *testcase.T) {
		t.SetEnv("WEATHERSTATION_NAME", "rooftop")
		t.SetEnv("WEATHERSTATION_POLICY", "fail-fast")
		t.SetEnv("WEATHERSTATION_JOURNAL_PATH", "/tmp/journal.db")
		t.SetEnv("LOG_LEVEL", "debug")

		c, err := demo.LoadConfig()
		assert.Must(t).NoError(err)
		assert.Must(t).Equal(demo.Config{
			StationName: "rooftop",
			Policy:      "fail-fast",
			JournalPath: "/tmp/journal.db",
			LogLevel:    "debug",
		}, c)
	})

	s.Test("unknown policy is rejected", func(t *testcase.T) {
		t.SetEnv("WEATHERSTATION_POLICY", "whatever")

		_, err := demo.LoadConfig()
		assert.Must(t).Error(err)
	})
}
