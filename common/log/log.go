package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var logger = newLogger(os.Stdout, "okey")

// InitLog 初始化全局日志，appName 作为前缀（通常为节点 identifier）
func InitLog(appName string, logLevel string) {
	// 使用 os.Stdout，避免 IDE 控制台把所有日志显示为红色
	logger = newLogger(os.Stdout, appName)
	logger.SetLevel(parseLevel(logLevel))
}

// SetOutput 替换日志输出目标，测试中可以传入 io.Discard
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func newLogger(w io.Writer, prefix string) *log.Logger {
	l := log.New(w)
	l.SetPrefix(prefix)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.DateTime)
	// 调用者信息跳过本包的一层封装
	l.SetReportCaller(true)
	l.SetCallerOffset(1)
	return l
}

func parseLevel(logLevel string) log.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func Fatal(format string, args ...any) {
	logger.Fatalf(format, args...)
}

func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Error(format string, args ...any) {
	logger.Errorf(format, args...)
}

func Debug(format string, args ...any) {
	logger.Debugf(format, args...)
}
