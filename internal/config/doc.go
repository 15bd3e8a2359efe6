// Package config loads the gdrive-endpoint configuration.
//
// Settings come from a YAML file (see DefaultPath), are overridden by
// environment variables through ApplyEnv and finally by command line flags.
// Validate reports every invalid field at once:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//		return err
//	}
//	cfg.ApplyEnv()
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package config
