package log

// NoopLogger drops everything. It is the fallback whenever a component is
// built without a logger.
type NoopLogger struct{}

// NewNoopLogger returns a NoopLogger.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

// With returns the receiver; fields are dropped with the messages.
func (n NoopLogger) With(...Field) Logger { return n }
