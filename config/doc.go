// Package config loads seqkit application configuration.
//
// Values come from a config.yml located next to the binary (or given with
// WithConfigFile), overlaid by environment variables and an optional .env
// file. Environment keys map onto nested keys by splitting on underscores,
// so QUERY_BUFFER_CAPACITY sets query.buffer_capacity.
//
//	cfg, err := config.Load("querydemo")
//	if err != nil {
//	    return err
//	}
//	logger.Init(cfg.Logging)
//	query.Configure(cfg.Query.Options()...)
package config
