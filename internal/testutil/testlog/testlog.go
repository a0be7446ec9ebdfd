package testlog

import (
	"testing"

	"github.com/danmuck/tincart/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logging.Logf("test=%s", t.Name())
}
