package config

import "strings"

type EnvVars struct {
	AppName  string `envconfig:"APP_NAME" default:"Helpdesk"`
	Env      string `envconfig:"ENV" default:"DEV"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}
