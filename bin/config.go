package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Flag defaults may be overridden from the environment, e.g.
// GOREPARSE_FORMAT=json.
var settings = newSettings()

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", "text")
	v.SetDefault("label_width", 25)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("GOREPARSE")
	v.AutomaticEnv()

	return v
}

func configString(key string) string {
	return settings.GetString(key)
}

func configBool(key string) string {
	return fmt.Sprintf("%v", settings.GetBool(key))
}

func configInt(key string) string {
	return fmt.Sprintf("%d", settings.GetInt(key))
}
