package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mberzonis/carelink/internal/flagx"
	"github.com/mberzonis/carelink/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Interval fields
// use timex.Duration so both string values ("10s") and integer nanoseconds
// parse. After unmarshalling, values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	SealSalt              string         `json:"seal_salt"`
	GoogleClientID        string         `json:"google_client_id"`
	GoogleClientSecret    string         `json:"google_client_secret"`
	OAuthRedirectURL      string         `json:"oauth_redirect_url"`
	ProviderTimeout       timex.Duration `json:"provider_timeout"`
	StateValidityDuration timex.Duration `json:"state_validity_duration"`
	ReminderCheckInterval timex.Duration `json:"reminder_check_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c or -config flags; when neither is
// set, nothing is loaded. Unreadable or invalid files panic: a config file
// that was asked for but cannot be used is a fatal startup error.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SealSalt = c.SealSalt
	config.GoogleClientID = c.GoogleClientID
	config.GoogleClientSecret = c.GoogleClientSecret
	config.OAuthRedirectURL = c.OAuthRedirectURL
	config.ProviderTimeout = time.Duration(c.ProviderTimeout.Duration)
	config.StateValidityDuration = time.Duration(c.StateValidityDuration.Duration)
	config.ReminderCheckInterval = time.Duration(c.ReminderCheckInterval.Duration)
}
