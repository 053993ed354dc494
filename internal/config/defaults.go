package config

const (
	driverSQLite  = "sqlite"
	driverSQLite3 = "sqlite3"

	memoryPath = ":memory:"

	defaultDriver        = driverSQLite
	defaultDatabasePath  = "~/.local/share/pqueue/queue.db"
	defaultTable         = "persistent_queue"
	defaultBusyTimeoutMS = 5000
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	maxQueueIDBytes      = 255
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Driver:        defaultDriver,
			Path:          defaultDatabasePath,
			Table:         defaultTable,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
