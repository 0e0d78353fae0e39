package config

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/logger"
	"github.com/streamhub/streamhub/utils"
)

type config struct {
	Env        *AppConfig
	db         *gorm.DB
	cache      map[string]string
	cacheMutex sync.Mutex
	jwtSecret  string
}

func NewConfig(env *AppConfig, gormDB *gorm.DB) (*config, error) {
	cfg := &config{
		db:    gormDB,
		cache: map[string]string{},
	}
	err := cfg.init(env)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *config) init(env *AppConfig) error {
	cfg.Env = env

	if cfg.Env.MempoolApi != "" {
		if err := utils.ValidateHTTPURL(cfg.Env.MempoolApi); err != nil {
			return err
		}
		err := cfg.SetIgnore(MempoolApiKey, cfg.Env.MempoolApi)
		if err != nil {
			return err
		}
	}

	return nil
}

func (cfg *config) GetEnv() *AppConfig {
	return cfg.Env
}

func (cfg *config) Get(key string, defaultValue string) (string, error) {
	cfg.cacheMutex.Lock()
	cached, found := cfg.cache[key]
	cfg.cacheMutex.Unlock()
	if found {
		return cached, nil
	}

	var userConfig db.UserConfig
	result := cfg.db.Limit(1).Find(&userConfig, &db.UserConfig{Key: key})
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return defaultValue, nil
	}

	cfg.cacheMutex.Lock()
	cfg.cache[key] = userConfig.Value
	cfg.cacheMutex.Unlock()

	return userConfig.Value, nil
}

func (cfg *config) set(key string, value string, clauses clause.OnConflict) error {
	userConfig := db.UserConfig{Key: key, Value: value}
	result := cfg.db.Clauses(clauses).Create(&userConfig)
	if result.Error != nil {
		logger.Logger.Error().Err(result.Error).Str("key", key).Msg("Failed to save config entry")
		return result.Error
	}

	cfg.cacheMutex.Lock()
	cfg.cache[key] = value
	cfg.cacheMutex.Unlock()

	return nil
}

// SetIgnore only writes the value if the key does not exist yet.
func (cfg *config) SetIgnore(key string, value string) error {
	clauses := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}
	return cfg.set(key, value, clauses)
}

// SetUpdate overwrites any existing value for the key.
func (cfg *config) SetUpdate(key string, value string) error {
	clauses := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}
	return cfg.set(key, value, clauses)
}

func (cfg *config) GetJWTSecret() (string, error) {
	if cfg.jwtSecret != "" {
		return cfg.jwtSecret, nil
	}

	jwtSecret, err := cfg.Get(JwtSecretKey, "")
	if err != nil {
		return "", err
	}

	if jwtSecret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return "", err
		}
		jwtSecret = hex.EncodeToString(secretBytes)
		if err := cfg.SetIgnore(JwtSecretKey, jwtSecret); err != nil {
			return "", err
		}
		// re-read in case another process won the insert
		jwtSecret, err = cfg.Get(JwtSecretKey, "")
		if err != nil {
			return "", err
		}
	}

	if jwtSecret == "" {
		return "", errors.New("failed to generate JWT secret")
	}

	cfg.jwtSecret = jwtSecret
	return jwtSecret, nil
}

func (cfg *config) GetNetwork() string {
	return cfg.Env.Network
}

func (cfg *config) GetMempoolApi() string {
	mempoolApi, err := cfg.Get(MempoolApiKey, cfg.Env.MempoolApi)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to read mempool api from config")
		return cfg.Env.MempoolApi
	}
	return mempoolApi
}

func (cfg *config) GetCurrency() string {
	currency, err := cfg.Get(CurrencyKey, constants.CURRENCY_BTC)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to read currency from config")
		return constants.CURRENCY_BTC
	}
	return currency
}

func (cfg *config) SetCurrency(value string) error {
	return cfg.SetUpdate(CurrencyKey, value)
}

func (cfg *config) CheckUnlockPassword(password string) bool {
	if cfg.Env.UnlockPassword == "" {
		// no password configured, the API is open on localhost
		return true
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Env.UnlockPassword), []byte(password)) == 1
}
