package logger

import "go.uber.org/zap"

var log = zap.NewNop().Sugar()

func Init() {
	InitFormat("")
}

// InitFormat picks the production JSON encoder for "json", development otherwise.
func InitFormat(format string) {
	var (
		l   *zap.Logger
		err error
	)
	if format == "json" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

func Sync() {
	_ = log.Sync()
}

func Info(msg string, kv ...interface{}) {
	log.Infow(msg, kv...)
}

func Warn(msg string, kv ...interface{}) {
	log.Warnw(msg, kv...)
}

func Error(msg string, kv ...interface{}) {
	log.Errorw(msg, kv...)
}
