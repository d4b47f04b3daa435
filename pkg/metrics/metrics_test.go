package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When building a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.customLabels, ShouldContainKey, "env")
			})

			Convey("And metrics should be registered on the given registry", func() {
				manager.evaluations.WithLabelValues(OutcomeAccepted).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_evaluations_total")
			})
		})

		Convey("When passing empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "proof")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording evaluations", func() {
			before := testutil.ToFloat64(globalManager.evaluations.WithLabelValues(OutcomeRejected))
			RecordEvaluation(OutcomeRejected)
			RecordEvaluation(OutcomeRejected)

			Convey("Then the outcome counter should grow", func() {
				after := testutil.ToFloat64(globalManager.evaluations.WithLabelValues(OutcomeRejected))
				So(after-before, ShouldEqual, 2.0)
			})
		})

		Convey("When recording proofs", func() {
			before := testutil.ToFloat64(globalManager.proofsGenerated.WithLabelValues("false"))
			RecordProofGenerated(false)

			Convey("Then the validity label should be used", func() {
				after := testutil.ToFloat64(globalManager.proofsGenerated.WithLabelValues("false"))
				So(after-before, ShouldEqual, 1.0)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(64)
			UpdateWorkerCount(3)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7.0)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 3.0)
			})
		})

		Convey("When recording histograms and counters", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordCheckValue("structure", 0.75)
					RecordFinalScore(0.606)
					RecordEvaluationLatency(0.2)
					RecordBatchSize(12)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordWorkerProcessingLatency(1)
					RecordHTTPRequest("validate", "POST", "200")
					RecordHTTPRequestDuration("validate", "POST", "200", 3)
					RecordErrorByComponent("queue", "queue_full")
				}, ShouldNotPanic)
			})
		})

		Convey("When registering runtime collectors twice", func() {
			So(RegisterRuntimeCollectors(), ShouldBeNil)
			So(RegisterRuntimeCollectors(), ShouldBeNil)

			Convey("Then Go runtime metrics should be gathered", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "go_goroutines")
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it should expose proof metrics", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
