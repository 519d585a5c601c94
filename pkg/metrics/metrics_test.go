package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "labviz")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("lab"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "lab")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10})

				manager.datasetsLoaded.Set(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_lab_datasets_loaded" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When ignoring empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			So(manager.namespace, ShouldEqual, "labviz")
			So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording pipeline metrics", func() {
			before := testutil.ToFloat64(globalManager.recordsDropped.WithLabelValues("books", "invalid_date"))
			RecordRecordDropped("books", "invalid_date")
			RecordRecordsLoaded("books", 10)
			RecordRecordDuplicates("books", 2)
			RecordPipelineStage("normalize", 1.5)
			UpdateDatasetsLoaded(3)
			RecordDatasetError("books")

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.recordsDropped.WithLabelValues("books", "invalid_date")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.datasetsLoaded), ShouldEqual, 3)
			})
		})

		Convey("When recording render, queue, worker and session metrics", func() {
			So(func() {
				RecordRender("chart", 4)
				RecordRelaxationIterations(300)
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("queue_full")
				UpdateWorkerCount(2)
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordHTTPRequest("labs", "GET", "200", 1)
				UpdateSessionsActive(1)
				UpdateSessionsActive(-1)
				RecordSessionEvent("resize")
				RecordEventThrottled()
				RecordErrorByComponent("queue", "closed")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given configured metric options", t, func() {
		Reset(func() { Init() })

		Init(
			WithNamespace("lv"),
			WithSubsystem("edge"),
			WithHistogramBuckets([]float64{5, 50}),
			WithConstLabels(map[string]string{"region": "eu"}),
		)

		Convey("Then the global collectors move to a fresh registry", func() {
			UpdateDatasetsLoaded(4)
			RecordRender("chart", 7)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			byName := map[string]bool{}
			for _, f := range families {
				byName[f.GetName()] = true
				if f.GetName() == "lv_edge_render_duration_milliseconds" {
					h := f.GetMetric()[0].GetHistogram()
					So(len(h.GetBucket()), ShouldEqual, 2)
					So(h.GetBucket()[0].GetUpperBound(), ShouldEqual, 5)
				}
			}
			So(byName["lv_edge_datasets_loaded"], ShouldBeTrue)
			So(byName["lv_edge_render_duration_milliseconds"], ShouldBeTrue)
			So(byName["labviz_datasets_loaded"], ShouldBeFalse)
		})
	})
}
