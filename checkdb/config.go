package checkdb

// Config holds configuration options for the Client
type Config struct {
	// DBPath is the SQLite database file, or ":memory:" for tests.
	DBPath  string
	verbose bool
}

func NewConfig(dbPath string, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		verbose: verbose,
	}
}
