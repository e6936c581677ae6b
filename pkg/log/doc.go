// Package log provides the logging abstraction used across inspectgw.
//
// [Logger] is implemented by [ZerologAdapter] for the binary and by
// [NoopLogger] for embedding and tests.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(log.NewJSONLogger(os.Stdout))
//	logger.Info("listening", log.String("addr", ":5000"))
//
// Request-scoped loggers are derived with With:
//
//	reqLog := logger.With(log.String("request_id", id))
package log
