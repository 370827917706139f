package logger

type Logger interface {
	Infof(format string, a ...interface{})
	Info(msg string)
	Debugf(format string, a ...interface{})
	Debug(msg string)
	Errorf(format string, a ...interface{})
	Error(msg string)
	Warningf(format string, a ...interface{})
	Warning(msg string)
}

// Multi fans every message out to all of the given loggers. Nil entries are
// skipped so optional sinks can be passed unconditionally.
func Multi(loggers ...Logger) Logger {
	var sinks multiLogger
	for _, l := range loggers {
		if l != nil {
			sinks = append(sinks, l)
		}
	}
	return sinks
}

type multiLogger []Logger

func (m multiLogger) Infof(format string, a ...interface{}) {
	for _, l := range m {
		l.Infof(format, a...)
	}
}

func (m multiLogger) Info(msg string) {
	for _, l := range m {
		l.Info(msg)
	}
}

func (m multiLogger) Debugf(format string, a ...interface{}) {
	for _, l := range m {
		l.Debugf(format, a...)
	}
}

func (m multiLogger) Debug(msg string) {
	for _, l := range m {
		l.Debug(msg)
	}
}

func (m multiLogger) Errorf(format string, a ...interface{}) {
	for _, l := range m {
		l.Errorf(format, a...)
	}
}

func (m multiLogger) Error(msg string) {
	for _, l := range m {
		l.Error(msg)
	}
}

func (m multiLogger) Warningf(format string, a ...interface{}) {
	for _, l := range m {
		l.Warningf(format, a...)
	}
}

func (m multiLogger) Warning(msg string) {
	for _, l := range m {
		l.Warning(msg)
	}
}
