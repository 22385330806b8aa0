package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birthprofile/internal/adapters/http/api"
	"github.com/okian/birthprofile/internal/adapters/mq/queue"
	"github.com/okian/birthprofile/internal/adapters/mq/worker"
	service "github.com/okian/birthprofile/internal/app"
	"github.com/okian/birthprofile/internal/domain/types"
)

// mockBatch answers each input from results or fails the whole batch.
type mockBatch struct {
	results []queue.Result
	err     error
	got     []types.BirthInput
}

func (m *mockBatch) DiagnoseBatch(_ context.Context, inputs []types.BirthInput) ([]queue.Result, error) {
	m.got = inputs
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func postBatch(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/diagnose/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeItems(w *httptest.ResponseRecorder) []types.BatchItem {
	var items []types.BatchItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	return items
}

func TestBatchHandler(t *testing.T) {
	Convey("Given a server with batch support", t, func() {
		batch := &mockBatch{}
		mux := newMux(&mockDependencies{}, api.WithBatch(batch, 3))

		Convey("When every input succeeds or fails on its own", func() {
			batch.results = []queue.Result{
				{Profile: types.Profile{Name: "Alice", SunSign: "Taurus"}},
				{Err: fmt.Errorf("%w: birthdate", service.ErrInvalidInput)},
				{Err: fmt.Errorf("%w: no ephemeris", service.ErrChart)},
			}
			w := postBatch(mux, "["+aliceJSON+","+aliceJSON+","+aliceJSON+"]")

			Convey("Then one item per input is returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				items := decodeItems(w)
				So(items, ShouldHaveLength, 3)
				So(items[0].Profile.SunSign, ShouldEqual, "Taurus")
				So(items[0].Error, ShouldBeNil)
				So(items[1].Error.Code, ShouldEqual, "bad_request")
				So(items[2].Error.Code, ShouldEqual, "chart_unavailable")
				So(batch.got, ShouldHaveLength, 3)
				So(batch.got[0].Name, ShouldEqual, "Alice")
			})
		})

		Convey("When an item fails unexpectedly", func() {
			batch.results = []queue.Result{{Err: errors.New("disk on fire")}}
			w := postBatch(mux, "["+aliceJSON+"]")

			Convey("Then the cause is not leaked", func() {
				items := decodeItems(w)
				So(items[0].Error.Code, ShouldEqual, "internal")
				So(items[0].Error.Message, ShouldNotContainSubstring, "disk")
			})
		})

		Convey("When the batch is empty", func() {
			w := postBatch(mux, "[]")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the batch is too large", func() {
			w := postBatch(mux, "["+strings.Repeat(aliceJSON+",", 3)+aliceJSON+"]")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "got 4")
		})

		Convey("When the body is a single object", func() {
			w := postBatch(mux, aliceJSON)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			batch.err = fmt.Errorf("input 0: %w", worker.ErrUnavailable)
			w := postBatch(mux, "["+aliceJSON+"]")

			Convey("Then the client is asked to retry", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
				So(decodeError(w)["code"], ShouldEqual, "busy")
			})
		})

		Convey("When the batch fails otherwise", func() {
			batch.err = context.Canceled
			w := postBatch(mux, "["+aliceJSON+"]")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When the method is GET", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/diagnose/batch", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
		})
	})

	Convey("Given a server without batch support", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the batch route is not registered", func() {
			w := postBatch(mux, "["+aliceJSON+"]")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestBatchEndToEnd(t *testing.T) {
	Convey("Given the real service behind a worker pool", t, func() {
		svc := service.New()
		pool := worker.NewPool(2, queue.NewInMemoryQueue(queue.WithCapacity(16)), svc)
		pool.Start(context.Background())
		Reset(func() { _ = pool.Shutdown(context.Background()) })

		mux := newMux(svc, api.WithBatch(pool, 0))
		bad := strings.Replace(aliceJSON, "1990-05-15", "1990/05/15", 1)
		w := postBatch(mux, "["+aliceJSON+","+bad+","+aliceJSON+"]")

		Convey("Then valid inputs match the single endpoint", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			items := decodeItems(w)
			So(items, ShouldHaveLength, 3)
			So(items[0].Profile.EtoYear, ShouldEqual, "庚午")
			So(items[1].Error.Code, ShouldEqual, "bad_request")
			So(items[2].Profile, ShouldResemble, items[0].Profile)

			single := post(mux, aliceJSON)
			var p types.Profile
			So(json.Unmarshal(single.Body.Bytes(), &p), ShouldBeNil)
			So(*items[0].Profile, ShouldResemble, p)
		})
	})
}
