package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the plugin credentials and service endpoints
type Config struct {
	SideShiftAffiliateID string
	SideShiftBaseURL     string

	CoinSwitchAPIKey  string
	CoinSwitchUserIP  string
	CoinSwitchBaseURL string

	NomicsAPIKey  string
	NomicsBaseURL string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".swaprail")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("sideshift_base_url", "https://sideshift.ai/api/v1")
	viper.SetDefault("coinswitch_base_url", "https://api.coinswitch.co/v2")
	viper.SetDefault("coinswitch_user_ip", "1.1.1.1")
	viper.SetDefault("nomics_base_url", "https://api.nomics.com/v1")

	// Read from environment variables
	viper.SetEnvPrefix("SWAPRAIL")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		SideShiftAffiliateID: viper.GetString("sideshift_affiliate_id"),
		SideShiftBaseURL:     viper.GetString("sideshift_base_url"),
		CoinSwitchAPIKey:     viper.GetString("coinswitch_api_key"),
		CoinSwitchUserIP:     viper.GetString("coinswitch_user_ip"),
		CoinSwitchBaseURL:    viper.GetString("coinswitch_base_url"),
		NomicsAPIKey:         viper.GetString("nomics_api_key"),
		NomicsBaseURL:        viper.GetString("nomics_base_url"),
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
