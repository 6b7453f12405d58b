package config

const (
	// EngineSQLite selects the pure go sqlite driver.
	EngineSQLite = "sqlite"
	// EngineMySQL selects the mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the postgres driver.
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // sqlite database file
	GormEngine string // sqlite, mysql or postgres
}
