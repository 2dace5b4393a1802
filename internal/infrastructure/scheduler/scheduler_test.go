package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Errorf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, template)
}

func (l *testLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// markerJob writes a sentinel file so test assertions can tell the job ran.
func markerJob(path string) func(context.Context) error {
	return func(ctx context.Context) error {
		return os.WriteFile(path, []byte("executed"), 0644)
	}
}

func TestScheduler(t *testing.T) {
	Convey("Given a Scheduler", t, func() {
		log := &testLogger{}

		Convey("New function", func() {
			scheduler := New(log)

			Convey("It should create a new scheduler successfully", func() {
				So(scheduler, ShouldNotBeNil)
				So(scheduler.cron, ShouldNotBeNil)
			})
		})

		Convey("AddJob function", func() {
			scheduler := New(log)

			Convey("When adding a job with a valid cron spec", func() {
				sentinel := filepath.Join(t.TempDir(), "job.log")

				err := scheduler.AddJob("* * * * * *", markerJob(sentinel))

				Convey("It should run the job once started", func() {
					So(err, ShouldBeNil)

					scheduler.Start()
					time.Sleep(2 * time.Second)
					scheduler.Stop()

					content, readErr := os.ReadFile(sentinel)
					So(readErr, ShouldBeNil)
					So(string(content), ShouldEqual, "executed")
				})
			})

			Convey("When adding a job with an invalid cron spec", func() {
				job := func(ctx context.Context) error { return nil }
				err := scheduler.AddJob("invalid spec", job)

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "expected exactly 6 fields")
				})
			})

			Convey("When the job keeps failing", func() {
				job := func(ctx context.Context) error {
					return errors.New("boom")
				}

				err := scheduler.AddJob("* * * * * *", job)
				So(err, ShouldBeNil)

				Convey("It should report the failure through the logger", func() {
					scheduler.Start()
					time.Sleep(2 * time.Second)
					scheduler.Stop()

					So(log.count(), ShouldBeGreaterThan, 0)
				})
			})
		})

		Convey("Start and Stop methods", func() {
			scheduler := New(log)
			sentinel := filepath.Join(t.TempDir(), "job.log")

			err := scheduler.AddJob("* * * * * *", markerJob(sentinel))
			So(err, ShouldBeNil)

			Convey("When starting and stopping the scheduler", func() {
				So(func() { scheduler.Start() }, ShouldNotPanic)
				time.Sleep(2 * time.Second)

				_, statErr := os.Stat(sentinel)
				So(statErr, ShouldBeNil)

				So(func() { scheduler.Stop() }, ShouldNotPanic)

				Convey("It should not run the job after stopping", func() {
					os.Remove(sentinel)
					time.Sleep(2 * time.Second)

					_, statErr := os.Stat(sentinel)
					So(os.IsNotExist(statErr), ShouldBeTrue)
				})
			})
		})
	})
}
