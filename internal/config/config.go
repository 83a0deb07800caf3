package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database  *dbConfig
	Service   *svcConfig
	Warehouse *warehouseConfig
	Blob      *blobConfig
	Facebook  *facebookConfig
	Mail      *mailConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"audiences"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	MetricsAddress   string        `envconfig:"AUDIENCE_SYNC_METRICS_ADDRESS" default:":8080"`
	LogLevel         string        `envconfig:"AUDIENCE_SYNC_LOG_LEVEL" default:"info"`
	DefaultContainer string        `envconfig:"AUDIENCE_SYNC_DEFAULT_CONTAINER" default:"fb-audiences-data"`
	FileChunkSize    int           `envconfig:"AUDIENCE_SYNC_FILE_CHUNK_SIZE" default:"50000"`
	StatusCheckDelay time.Duration `envconfig:"AUDIENCE_SYNC_STATUS_CHECK_DELAY" default:"150m"`
	AlwaysNotify     bool          `envconfig:"AUDIENCE_SYNC_ALWAYS_NOTIFY_STATUS" default:"true"`
}

type warehouseConfig struct {
	URL string `envconfig:"WAREHOUSE_DATABASE_URL" default:""`
}

type blobConfig struct {
	Endpoint  string `envconfig:"BLOB_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"BLOB_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"BLOB_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"BLOB_USE_SSL" default:"false"`
}

type facebookConfig struct {
	GraphBaseURL      string        `envconfig:"FACEBOOK_GRAPH_BASE_URL" default:"https://graph.facebook.com/v20.0"`
	StatusBaseURL     string        `envconfig:"FACEBOOK_STATUS_BASE_URL" default:""`
	Timeout           time.Duration `envconfig:"FACEBOOK_API_TIMEOUT" default:"10m"`
	PopulateBatchSize int           `envconfig:"FACEBOOK_POPULATE_BATCH_SIZE" default:"9999"`
	ReplaceBatchSize  int           `envconfig:"FACEBOOK_REPLACE_BATCH_SIZE" default:"5000"`
	ReadyStatusCode   int           `envconfig:"FACEBOOK_READY_STATUS_CODE" default:"200"`
}

type mailConfig struct {
	BaseURL string `envconfig:"MAIL_SERVICE_BASE_URL" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
	return cfg
}
