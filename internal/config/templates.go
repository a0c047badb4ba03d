package config

import (
	"os"
	"path/filepath"

	apperrors "trade-journal/internal/errors"
)

const configTemplate = `# Trade Journal Configuration

[database]
# SQLite database file, relative to this directory unless absolute
path = "journal.db"

[server]
# Listen address for "journal serve"
addr = "127.0.0.1:8080"
read_timeout = "10s"
write_timeout = "30s"
# Journals computed concurrently by "journal stats --all"
max_parallel = 4

[stats]
# IANA zone entry dates are bucketed in. Timestamps without an offset are
# read as wall-clock time in this zone.
timezone = "UTC"

# Session windows must cover hours 0-24 in order without gaps.
[[stats.sessions]]
name = "Asian"
start_hour = 0
end_hour = 8

[[stats.sessions]]
name = "London"
start_hour = 8
end_hour = 13

[[stats.sessions]]
name = "New York"
start_hour = 13
end_hour = 21

[[stats.sessions]]
name = "Other"
start_hour = 21
end_hour = 24

[logging]
# debug, info, warn, error
level = "info"
console = true
file = false
file_path = "logs/journal.log"
# Rotation limits: megabytes, files, days
max_size = 50
max_backups = 5
max_age = 30
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return apperrors.Wrap(err, "creating config directory")
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return apperrors.Wrap(err, "writing config template")
	}

	return nil
}
