// repository/main_test.go
package repository

import (
	"os"
	"testing"

	"backups-api/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
