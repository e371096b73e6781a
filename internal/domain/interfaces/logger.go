package interfaces

// Logger is the subset of a tagged log channel the core writes to.
// *logger.L from github.com/bitmark-inc/logger satisfies it.
type Logger interface {
	Debugf(format string, arguments ...interface{})
	Infof(format string, arguments ...interface{})
	Warnf(format string, arguments ...interface{})
	Errorf(format string, arguments ...interface{})
}
