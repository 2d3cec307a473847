package yalogger

import "errors"

// Level mirrors logrus level ordering so it can be cast directly.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

type BaseLoggerType uint8

const (
	Logrus BaseLoggerType = iota
)

const (
	KeyRunID = "run_id"
	KeyLabel = "label"
	KeyBatch = "batch"
)

const DefaultTimestampFormat = "2006-01-02 15:04:05"

var ErrInvalidLogLevel = errors.New("invalid log level")
