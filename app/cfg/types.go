package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port         string
	APIAccessKey string
	WorkerCount  int
	FetchTimeout int

	// Source configuration
	PresetsFile     string
	HNStoryLimit    int
	ArxivMaxResults int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
