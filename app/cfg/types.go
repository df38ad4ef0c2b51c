package cfg

type Cfg struct {
	// Document configuration
	DocumentSource string
	AuthorsPath    string
	SettingsPath   string

	// Storage configuration
	StoreBackend  string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURL      string
	MongoDatabase string
	SnapshotPath  string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	MemoSize          int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
