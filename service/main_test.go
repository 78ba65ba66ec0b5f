// service/main_test.go
package service

import (
	"os"
	"testing"

	"backups-api/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
