// Package logger provides structured logging for seqkit on top of zerolog.
//
// A global logger is configured once with Init; packages obtain tagged
// component loggers through Get, which consults a small named registry
// before falling back to the global logger:
//
//	logger.Init(logger.Config{Level: "debug", Format: "json"})
//	log := logger.Get("query")
//	log.Debug("lookup built", logger.Fields(logger.FieldOperation, "group_by", logger.FieldKeys, 3))
package logger
