// Package logging builds the zap loggers shared by the CLI and the server.
//
// Production output is sampled JSON on stderr; development output is
// colored console text at debug level. Subsystems take a named child:
//
//	log := logging.NewDefault()
//	runner := pipeline.NewRunner(src, pipeline.WithLogger(log.Component("pipeline")))
//	log.Info("Server starting", zap.String("port", "8000"))
package logging
