package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/joho/godotenv"
	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundline/ferryops/catalog"
	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/inmem"
	"github.com/soundline/ferryops/notify"
	"github.com/soundline/ferryops/operations"
	"github.com/soundline/ferryops/postgres"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
	"github.com/soundline/ferryops/scheduling"
	"github.com/soundline/ferryops/stats"
	"github.com/soundline/ferryops/traveler"
)

const defaultAddr = ":8080"

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	var (
		addr        = flag.String("http.addr", envString("HTTP_ADDR", defaultAddr), "HTTP listen address")
		databaseURL = flag.String("db.url", envString("DATABASE_URL", ""), "Postgres URL, empty for in-memory repositories")
		zipkinURL   = flag.String("zipkin.url", envString("ZIPKIN_URL", ""), "Zipkin collector URL, empty to disable")
	)
	flag.Parse()

	var logger log.Logger
	logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var (
		ferries    ferry.Repository
		harbours   harbour.Repository
		routes     route.Repository
		travelers  traveler.Repository
		schedules  schedule.Repository
		departures departure.Repository
	)
	if *databaseURL != "" {
		db, err := postgres.Open(*databaseURL)
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.InitSchema(db); err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		ferries = postgres.NewFerryRepository(db)
		harbours = postgres.NewHarbourRepository(db)
		routes = postgres.NewRouteRepository(db)
		travelers = postgres.NewTravelerRepository(db)
		schedules = postgres.NewScheduleRepository(db)
		departures = postgres.NewDepartureRepository(db)
	} else {
		ferries = inmem.NewFerryRepository()
		harbours = inmem.NewHarbourRepository()
		routes = inmem.NewRouteRepository()
		travelers = inmem.NewTravelerRepository()
		schedules = inmem.NewScheduleRepository()
		departures = inmem.NewDepartureRepository()
	}

	var zipkinTracer *stdzipkin.Tracer
	if *zipkinURL != "" {
		reporter := zipkinhttp.NewReporter(*zipkinURL)
		defer reporter.Close()
		endpoint, err := stdzipkin.NewEndpoint("ferryops", *addr)
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
		zipkinTracer, err = stdzipkin.NewTracer(reporter, stdzipkin.WithLocalEndpoint(endpoint))
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}
	otTracer := stdopentracing.GlobalTracer()

	pubsub := notify.NewGoChannel(log.With(logger, "component", "notify"))
	defer pubsub.Close()
	sink := notify.NewPublisher(pubsub)

	recorder := stats.NewPrometheus()
	arena := departure.NewArena()

	fieldKeys := []string{"method"}

	var cs catalog.Service
	cs = catalog.NewService(ferries, harbours, routes, travelers, schedules, departures)
	cs = catalog.NewLoggingService(log.With(logger, "component", "catalog"), cs)
	cs = catalog.NewInstrumentingService(
		kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "ferryops",
			Subsystem: "catalog",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys),
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "ferryops",
			Subsystem: "catalog",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys),
		cs,
	)
	catalogSet := catalog.NewSet(cs,
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "ferryops",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds.",
		}, []string{"method", "success"}),
		otTracer, zipkinTracer)

	var opsSvc operations.Service
	opsSvc = operations.NewService(departures, ferries, schedules, travelers, arena, sink, recorder,
		log.With(logger, "component", "operations"))
	opsSvc = operations.NewLoggingService(log.With(logger, "component", "operations"), opsSvc)
	operationsSet := operations.NewSet(opsSvc,
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "ferryops",
			Subsystem: "operations",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds.",
		}, []string{"method", "success"}),
		otTracer, zipkinTracer)

	var ss scheduling.Service
	ss = scheduling.NewService(schedules, departures, ferries, routes, opsSvc)
	ss = scheduling.NewLoggingService(log.With(logger, "component", "scheduling"), ss)
	schedulingSet := scheduling.NewSet(ss,
		kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "ferryops",
			Subsystem: "scheduling",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds.",
		}, []string{"method", "success"}),
		otTracer, zipkinTracer)

	httpLogger := log.With(logger, "component", "http")

	mux := http.NewServeMux()
	mux.Handle("/catalog/v1/", catalog.MakeHandler(catalogSet, httpLogger))
	mux.Handle("/scheduling/v1/", scheduling.MakeHandler(schedulingSet, httpLogger))
	mux.Handle("/operations/v1/", operations.MakeHandler(operationsSet, httpLogger))
	mux.Handle("/metrics", promhttp.Handler())

	errs := make(chan error, 2)
	go func() {
		logger.Log("transport", "http", "address", *addr, "msg", "listening")
		errs <- http.ListenAndServe(*addr, mux)
	}()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	logger.Log("terminated", <-errs)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
