package config

import (
	"github.com/spf13/pflag"
)

// Flag names
const (
	FlagDataDir      = "data-dir"
	FlagListen       = "listen"
	FlagPeer         = "peer"
	FlagBootstrapKey = "bootstrap-key"
	FlagLogLevel     = "log-level"
	FlagLogFormat    = "log-format"
	FlagMetrics      = "metrics"
)

// AddFlags registers the command line overrides on fs
func AddFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.String(FlagDataDir, d.DataDir, "directory for the logs and views")
	fs.String(FlagListen, d.ListenAddr, "address to accept peers on (empty to disable)")
	fs.StringSlice(FlagPeer, nil, "peer address to connect to (repeatable)")
	fs.String(FlagBootstrapKey, "", "sync key of the device to pair with")
	fs.String(FlagLogLevel, d.Log.Level, "log level (debug|info|warn|error)")
	fs.String(FlagLogFormat, d.Log.Format, "log format (text|json)")
	fs.Bool(FlagMetrics, d.Metrics.Enabled, "serve prometheus metrics on /metrics")
}

// ApplyFlags overrides c with the flags set on the command line
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error

	if fs.Changed(FlagDataDir) {
		if c.DataDir, err = fs.GetString(FlagDataDir); err != nil {
			return err
		}
	}
	if fs.Changed(FlagListen) {
		if c.ListenAddr, err = fs.GetString(FlagListen); err != nil {
			return err
		}
	}
	if fs.Changed(FlagPeer) {
		if c.Peers, err = fs.GetStringSlice(FlagPeer); err != nil {
			return err
		}
	}
	if fs.Changed(FlagBootstrapKey) {
		if c.BootstrapKey, err = fs.GetString(FlagBootstrapKey); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogLevel) {
		if c.Log.Level, err = fs.GetString(FlagLogLevel); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogFormat) {
		if c.Log.Format, err = fs.GetString(FlagLogFormat); err != nil {
			return err
		}
	}
	if fs.Changed(FlagMetrics) {
		if c.Metrics.Enabled, err = fs.GetBool(FlagMetrics); err != nil {
			return err
		}
	}

	return nil
}
