package config

const (
	CurrencyKey   = "Currency"
	MempoolApiKey = "MempoolApi"
	JwtSecretKey  = "JWTSecret"
	NodeAliasKey  = "NodeAlias"
)

type AppConfig struct {
	LNDAddress      string `envconfig:"LND_ADDRESS"`
	LNDCertFile     string `envconfig:"LND_CERT_FILE"`
	LNDCertHex      string `envconfig:"LND_CERT_HEX"`
	LNDMacaroonFile string `envconfig:"LND_MACAROON_FILE"`
	LNDMacaroonHex  string `envconfig:"LND_MACAROON_HEX"`
	Workdir         string `envconfig:"WORK_DIR"`
	Port            string `envconfig:"PORT" default:"8029"`
	DatabaseUri     string `envconfig:"DATABASE_URI" default:"streamhub.db"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"4"`
	LogToFile       bool   `envconfig:"LOG_TO_FILE" default:"true"`
	LogDBQueries    bool   `envconfig:"LOG_DB_QUERIES" default:"false"`
	Network         string `envconfig:"NETWORK" default:"mainnet"`
	MempoolApi      string `envconfig:"MEMPOOL_API" default:"https://mempool.space/api"`
	UnlockPassword  string `envconfig:"UNLOCK_PASSWORD"`
}

type Config interface {
	Get(key string, defaultValue string) (string, error)
	SetIgnore(key string, value string) error
	SetUpdate(key string, value string) error
	GetJWTSecret() (string, error)
	GetNetwork() string
	GetMempoolApi() string
	GetCurrency() string
	SetCurrency(value string) error
	CheckUnlockPassword(password string) bool
	GetEnv() *AppConfig
}
