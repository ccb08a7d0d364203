// Package log wraps logrus with key value pair logging functions.
package log

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05.000"

// SetLogger set log level and format, output to stdout
func SetLogger(logLevel uint32, jsonFormat, colorFormat bool) {
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.Level(logLevel))
	if jsonFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
			ForceQuote:      true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
			DisableSorting:  true,
		})
	}
}

// SetLogFile also writes log to 'logFile', rotated every 'rotation' hours
// and removed after 'maxAge' hours. Empty 'logFile' keeps stdout only.
func SetLogFile(logFile string, rotation, maxAge uint64) error {
	if logFile == "" {
		return nil
	}
	writer, err := newRotateWriter(logFile, rotation, maxAge)
	if err != nil {
		return err
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, writer))
	return nil
}

func newRotateWriter(logFile string, rotation, maxAge uint64) (*rotatelogs.RotateLogs, error) {
	logFile, err := filepath.Abs(logFile)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return nil, err
	}
	if rotation == 0 {
		rotation = 24
	}
	options := []rotatelogs.Option{
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(time.Duration(rotation) * time.Hour),
	}
	if maxAge > 0 {
		options = append(options, rotatelogs.WithMaxAge(time.Duration(maxAge)*time.Hour))
	}
	return rotatelogs.New(logFile+".%Y%m%d%H", options...)
}

// WithFields converts key value pairs to logrus entry
func WithFields(ctx ...interface{}) *logrus.Entry {
	length := len(ctx)
	if length%2 != 0 {
		Debugf("log fields number %v is not even", length)
	}
	fields := make(logrus.Fields)
	for k := 0; k+2 <= length; k += 2 {
		key, ok := ctx[k].(string)
		if ok {
			fields[key] = ctx[k+1]
		} else {
			Debugf("log field key '%v' is not string", ctx[k])
		}
	}
	return logrus.WithFields(fields)
}

// IsTraceEnabled trace level is enabled
func IsTraceEnabled() bool {
	return logrus.IsLevelEnabled(logrus.TraceLevel)
}

func Trace(msg string, ctx ...interface{}) {
	WithFields(ctx...).Trace(msg)
}

func Tracef(format string, args ...interface{}) {
	logrus.Tracef(format, args...)
}

func Debug(msg string, ctx ...interface{}) {
	WithFields(ctx...).Debug(msg)
}

func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}

func Info(msg string, ctx ...interface{}) {
	WithFields(ctx...).Info(msg)
}

func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}

func Println(msg ...interface{}) {
	logrus.Println(msg...)
}

func Printf(format string, args ...interface{}) {
	logrus.Printf(format, args...)
}

func Warn(msg string, ctx ...interface{}) {
	WithFields(ctx...).Warn(msg)
}

func Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}

func Error(msg string, ctx ...interface{}) {
	WithFields(ctx...).Error(msg)
}

func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}

func Fatal(msg string, ctx ...interface{}) {
	WithFields(ctx...).Fatal(msg)
}

func Fatalf(format string, args ...interface{}) {
	logrus.Fatalf(format, args...)
}
