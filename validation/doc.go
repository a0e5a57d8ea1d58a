// Package validation checks seqkit configuration values.
//
// Struct tags cover per-field rules and are evaluated by go-playground's
// validator; cross-field rules are collected with a Validator:
//
//	type QueryConfig struct {
//	    BufferCapacity int `validate:"gte=1,lte=1048576"`
//	}
//	err := validation.Validate(cfg)
//
//	v := validation.New()
//	v.RequiredIf(cfg.Metrics.Enabled, "metrics.endpoint", cfg.Metrics.Endpoint)
//	err := v.Err()
//
// Both return an *errors.AppError with code INVALID_INPUT whose Details carry
// the per-field messages under "fields".
package validation
