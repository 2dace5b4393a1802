package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When creating a console-only logger", func() {
			log, err := New("info", "")

			Convey("It should log without a file sink", func() {
				So(err, ShouldBeNil)
				So(log, ShouldNotBeNil)
				So(func() { log.Infof("Loaded %d account(s)", 2) }, ShouldNotPanic)
			})
		})

		Convey("When a log file is configured", func() {
			logFile := filepath.Join(t.TempDir(), "megakeep.log")
			log, err := New("debug", logFile)

			Convey("It should tee into the file sink", func() {
				So(err, ShouldBeNil)
				log.Debugf("[%s] Checking login...", "alice@example.com")
				log.Close()

				_, statErr := os.Stat(logFile)
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When the log file lives in a new directory", func() {
			logFile := filepath.Join(t.TempDir(), "logs", "nested", "megakeep.log")
			log, err := New("info", logFile)

			Convey("It should create the directory", func() {
				So(err, ShouldBeNil)
				So(log, ShouldNotBeNil)

				info, statErr := os.Stat(filepath.Dir(logFile))
				So(statErr, ShouldBeNil)
				So(info.IsDir(), ShouldBeTrue)
			})
		})

		Convey("When the log directory cannot be created", func() {
			// /dev/null is not a directory, so MkdirAll must fail.
			log, err := New("info", "/dev/null/megakeep.log")

			Convey("It should return an error", func() {
				So(log, ShouldBeNil)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create log directory")
			})
		})

		Convey("When the level is unknown", func() {
			log, err := New("chatty", "")

			Convey("It should fall back to info", func() {
				So(err, ShouldBeNil)
				So(log.Desugar().Core().Enabled(zapcore.InfoLevel), ShouldBeTrue)
				So(log.Desugar().Core().Enabled(zapcore.DebugLevel), ShouldBeFalse)
			})
		})

		Convey("newCore", func() {
			Convey("Without a file it should honor the requested level", func() {
				core := newCore(zapcore.WarnLevel, "")

				So(core.Enabled(zapcore.WarnLevel), ShouldBeTrue)
				So(core.Enabled(zapcore.InfoLevel), ShouldBeFalse)
			})

			Convey("With a file it should honor the level on both sinks", func() {
				logFile := filepath.Join(t.TempDir(), "megakeep.log")
				core := newCore(zapcore.DebugLevel, logFile)

				So(core.Enabled(zapcore.DebugLevel), ShouldBeTrue)
			})
		})

		Convey("Close method", func() {
			Convey("When closing a logger with a file sink", func() {
				logFile := filepath.Join(t.TempDir(), "megakeep.log")
				log, err := New("info", logFile)
				So(err, ShouldBeNil)

				log.Infof("=== Run complete: %d/%d account(s) kept alive ===", 2, 2)

				Convey("It should flush and close without panic", func() {
					So(func() { log.Close() }, ShouldNotPanic)

					_, statErr := os.Stat(logFile)
					So(statErr, ShouldBeNil)
				})
			})

			Convey("When closing a console-only logger", func() {
				log, err := New("info", "")
				So(err, ShouldBeNil)

				Convey("It should close without panic", func() {
					So(func() { log.Close() }, ShouldNotPanic)
				})
			})
		})
	})
}
