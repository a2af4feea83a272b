package notify

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kit/kit/log"
)

type loggerAdapter struct {
	logger log.Logger
}

// NewLoggerAdapter bridges a go-kit logger to watermill's logging contract.
func NewLoggerAdapter(logger log.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{logger: logger}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Log(append(kvs(fields), "msg", msg, "err", err)...)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Log(append(kvs(fields), "msg", msg)...)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Log(append(kvs(fields), "msg", msg)...)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Log(append(kvs(fields), "msg", msg)...)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{logger: log.With(a.logger, kvs(fields)...)}
}

func kvs(fields watermill.LogFields) []interface{} {
	out := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
