package logger

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

type logPair struct {
	logFn func(...any)
	obj   string
	msg   string
}

const (
	logSize    = 1000
	objWidth   = 20
	lineFormat = "|%20s|%-100s"
)

var (
	logCh    = make(chan logPair, logSize)
	initOnce sync.Once
	started  atomic.Bool
)

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

// Init sets the level and formatter and starts the asynchronous writer.
// Messages logged before Init are written synchronously.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})

	initOnce.Do(func() {
		go func() {
			for pair := range logCh {
				pair.logFn(fmt.Sprintf(lineFormat, pair.obj, pair.msg))
			}
		}()
		started.Store(true)
	})
}

func emit(lvl logrus.Level, logFn func(...any), object any, msg string) {
	if logrus.GetLevel() < lvl {
		return
	}
	pair := logPair{logFn: logFn, obj: objToString(object), msg: msg}
	if !started.Load() {
		logFn(fmt.Sprintf(lineFormat, pair.obj, pair.msg))
		return
	}
	logCh <- pair
}

func Trace(object any, message string) {
	emit(logrus.TraceLevel, logrus.Trace, object, message)
}

func Tracef(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	emit(logrus.TraceLevel, logrus.Trace, object, fmt.Sprintf(message, args...))
}

func Debug(object any, message string) {
	emit(logrus.DebugLevel, logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	emit(logrus.DebugLevel, logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	emit(logrus.InfoLevel, logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	emit(logrus.InfoLevel, logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	emit(logrus.WarnLevel, logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	emit(logrus.WarnLevel, logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	emit(logrus.ErrorLevel, logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	emit(logrus.ErrorLevel, logrus.Error, object, fmt.Sprintf(message, args...))
}

func Fatal(object any, message string) {
	logrus.Fatalf(lineFormat, objToString(object), message)
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatalf(lineFormat, objToString(object), fmt.Sprintf(message, args...))
}
