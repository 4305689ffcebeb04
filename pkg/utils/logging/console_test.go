package logging_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/vsget/pkg/utils/logging"
)

func TestConsoleMinLevel(t *testing.T) {
	var buf bytes.Buffer
	c := logging.NewConsole(
		logging.WithWriter(&buf),
		logging.WithMinLevel(logging.LevelWarn),
		logging.WithColor(false),
	)

	c.Debug("d", logging.WithoutTimestamp())
	c.Info("i", logging.WithoutTimestamp())
	c.Warn("w", logging.WithoutTimestamp())
	c.Error("e", logging.WithoutTimestamp())
	c.Critical("c", logging.WithoutTimestamp())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	gt.Value(t, lines).Equal([]string{
		"[WARNING] w",
		"[ERROR] e",
		"[CRITICAL] c",
	})
}

func TestConsoleTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	c := logging.NewConsole(
		logging.WithWriter(&buf),
		logging.WithColor(false),
		logging.WithConsoleClock(func() time.Time { return ts }),
	)

	c.Info("downloading gitlens")

	gt.Value(t, buf.String()).Equal("[INFO 2026-08-25 10:30:00] downloading gitlens\n")
}

func TestConsoleDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	c := logging.NewConsole(logging.WithWriter(&buf), logging.WithColor(false))

	c.Debug("hidden", logging.WithoutTimestamp())
	c.Info("shown", logging.WithoutTimestamp())

	gt.String(t, buf.String()).Contains("shown")
	gt.Value(t, strings.Contains(buf.String(), "hidden")).Equal(false)
}
