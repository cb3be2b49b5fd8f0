package config

import (
	"flag"
	"os"
	"time"

	"github.com/mberzonis/carelink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   secret key (JWT signing + seal-key derivation)
//	-i string   Google OAuth client id
//	-p string   Google OAuth client secret
//	-r string   OAuth redirect URL
//	-t int      provider call timeout, seconds
//	-v int      OAuth state validity, minutes
//	-m int      reminder check interval, seconds
//
// Duration flags are accepted as integers and converted to time.Duration.
// os.Args is filtered to the flags handled here (flagx.FilterArgs), so this
// parse never collides with flags owned by other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i", "-p", "-r", "-t", "-v", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.GoogleClientID, "i", config.GoogleClientID, "google oauth client id")
	fs.StringVar(&config.GoogleClientSecret, "p", config.GoogleClientSecret, "google oauth client secret")
	fs.StringVar(&config.OAuthRedirectURL, "r", config.OAuthRedirectURL, "oauth redirect url")

	providerTimeout := fs.Int("t", int(config.ProviderTimeout.Seconds()), "provider_timeout (in seconds)")
	stateValidity := fs.Int("v", int(config.StateValidityDuration.Minutes()), "state_validity_duration (in minutes)")
	reminderInterval := fs.Int("m", int(config.ReminderCheckInterval.Seconds()), "reminder_check_interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ProviderTimeout = time.Duration(*providerTimeout) * time.Second
	config.StateValidityDuration = time.Duration(*stateValidity) * time.Minute
	config.ReminderCheckInterval = time.Duration(*reminderInterval) * time.Second
}
