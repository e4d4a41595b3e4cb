package migration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Migration tek bir veritabanı migration'ını temsil eder
type Migration struct {
	Version   int64      `json:"version"`
	Name      string     `json:"name"`
	UpSQL     string     `json:"-"`
	DownSQL   string     `json:"-"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"appliedAt,omitempty"`
}

// Dosya adı formatı: 000001_create_users.up.sql
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// parseFileName migration dosya adından version, name ve yön çıkarır
func parseFileName(fileName string) (version int64, name string, direction string, err error) {
	matches := migrationFilePattern.FindStringSubmatch(fileName)
	if matches == nil {
		return 0, "", "", fmt.Errorf("geçersiz migration dosya adı: %s", fileName)
	}

	version, err = strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("geçersiz migration version: %s", matches[1])
	}

	return version, matches[2], matches[3], nil
}
