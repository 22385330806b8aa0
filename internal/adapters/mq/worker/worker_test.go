package worker_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/birthprofile/internal/adapters/mq/queue"
	"github.com/okian/birthprofile/internal/adapters/mq/worker"
	"github.com/okian/birthprofile/internal/domain/types"
	logging "github.com/okian/birthprofile/pkg/logger"
	"github.com/okian/birthprofile/pkg/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errChart = errors.New("chart failed")

// mockDiagnoser echoes the input name and fails for names in fail.
type mockDiagnoser struct {
	calls atomic.Int64
	fail  map[string]bool
	delay time.Duration
}

func (m *mockDiagnoser) Diagnose(ctx context.Context, in types.BirthInput) (types.Profile, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.fail[in.Name] {
		return types.Profile{}, errChart
	}
	return types.Profile{Name: in.Name, SunSign: "Taurus"}, nil
}

func inputs(n int) []types.BirthInput {
	out := make([]types.BirthInput, n)
	for i := range out {
		out[i] = types.BirthInput{Name: fmt.Sprintf("person-%02d", i)}
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		d := &mockDiagnoser{fail: map[string]bool{"bad": true}}
		w := worker.NewInMemoryWorker(q, d, worker.WithName("w0"), worker.WithLogger(logging.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)

		convey.Reset(func() {
			cancel()
			<-w.Done()
		})

		convey.Convey("When a job is queued", func() {
			done := make(chan queue.Result, 1)
			convey.So(q.Enqueue(ctx, queue.Job{Ctx: ctx, Input: types.BirthInput{Name: "alice"}, Done: done}), convey.ShouldBeTrue)

			convey.Convey("Then its profile is delivered", func() {
				r := <-done
				convey.So(r.Err, convey.ShouldBeNil)
				convey.So(r.Profile.Name, convey.ShouldEqual, "alice")
			})
		})

		convey.Convey("When the diagnosis fails", func() {
			done := make(chan queue.Result, 1)
			q.Enqueue(ctx, queue.Job{Ctx: ctx, Input: types.BirthInput{Name: "bad"}, Done: done})

			convey.Convey("Then the error is delivered", func() {
				r := <-done
				convey.So(errors.Is(r.Err, errChart), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the caller gave up before the job ran", func() {
			jobCtx, jobCancel := context.WithCancel(context.Background())
			done := make(chan queue.Result, 1)
			q.Enqueue(ctx, queue.Job{Ctx: jobCtx, Input: types.BirthInput{Name: "late"}, Done: done})
			jobCancel()

			convey.Convey("Then the job is answered without computing", func() {
				r := <-done
				if r.Err == nil {
					// The worker may have won the race.
					convey.So(r.Profile.Name, convey.ShouldEqual, "late")
					return
				}
				convey.So(errors.Is(r.Err, context.Canceled), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a started pool of four workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		d := &mockDiagnoser{fail: map[string]bool{"person-03": true}, delay: time.Millisecond}
		pool := worker.NewPool(4, q, d)
		pool.Start(context.Background())

		convey.Reset(func() {
			_ = pool.Shutdown(context.Background())
		})

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a batch is diagnosed", func() {
			results, err := pool.DiagnoseBatch(context.Background(), inputs(20))

			convey.Convey("Then results keep input order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(results, convey.ShouldHaveLength, 20)
				for i, r := range results {
					if i == 3 {
						convey.So(errors.Is(r.Err, errChart), convey.ShouldBeTrue)
						continue
					}
					convey.So(r.Err, convey.ShouldBeNil)
					convey.So(r.Profile.Name, convey.ShouldEqual, fmt.Sprintf("person-%02d", i))
				}
			})
		})

		convey.Convey("When a single input is submitted", func() {
			ch, err := pool.Submit(context.Background(), types.BirthInput{Name: "solo"})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then exactly one result arrives", func() {
				r := <-ch
				convey.So(r.Profile.Name, convey.ShouldEqual, "solo")
			})
		})

		convey.Convey("When the pool is shut down", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then new work is refused", func() {
				_, err := pool.Submit(context.Background(), types.BirthInput{Name: "late"})
				convey.So(errors.Is(err, worker.ErrUnavailable), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPoolBackpressure(t *testing.T) {
	convey.Convey("Given a pool that has not started and a queue of two", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		d := &mockDiagnoser{}
		pool := worker.NewPool(2, q, d)

		convey.Convey("When a batch of three is diagnosed", func() {
			_, err := pool.DiagnoseBatch(context.Background(), inputs(3))

			convey.Convey("Then the batch is refused", func() {
				convey.So(errors.Is(err, worker.ErrUnavailable), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "input 2")
			})

			convey.Convey("Then the queued part is skipped once workers run", func() {
				pool.Start(context.Background())
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(d.calls.Load(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestWorkerPoolBatchCancellation(t *testing.T) {
	convey.Convey("Given a pool that never runs", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		pool := worker.NewPool(1, q, &mockDiagnoser{})

		convey.Convey("When the caller's context ends while waiting", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := pool.DiagnoseBatch(ctx, inputs(2))

			convey.Convey("Then the wait is abandoned", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})

		convey.Reset(func() {
			pool.Start(context.Background())
			_ = pool.Shutdown(context.Background())
		})
	})
}

// queueDepth reads the queue depth gauge from the service registry.
func queueDepth() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() == "birthprofile_diagnosis_queue_depth" {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestQueueDepthGauge(t *testing.T) {
	convey.Convey("Given three jobs queued before a single worker starts", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		ctx := context.Background()
		done := make([]chan queue.Result, 3)
		for i := range done {
			done[i] = make(chan queue.Result, 1)
			q.Enqueue(ctx, queue.Job{Ctx: ctx, Input: types.BirthInput{Name: fmt.Sprintf("p%d", i)}, Done: done[i]})
		}
		convey.So(queueDepth(), convey.ShouldEqual, 3)

		pool := worker.NewPool(1, q, &mockDiagnoser{})
		pool.Start(ctx)
		convey.Reset(func() { _ = pool.Shutdown(ctx) })

		convey.Convey("When the worker drains the queue", func() {
			for _, ch := range done {
				<-ch
			}

			convey.Convey("Then the gauge falls back to zero", func() {
				convey.So(queueDepth(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestWorkerPoolDefaults(t *testing.T) {
	convey.Convey("Given a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, &mockDiagnoser{}, worker.WithLogger(logging.Discard()))

		convey.Convey("Then one worker per CPU is created", func() {
			convey.So(pool.Size(), convey.ShouldEqual, runtime.NumCPU())
		})
	})
}
