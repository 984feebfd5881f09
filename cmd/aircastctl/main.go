// Package main provides aircastctl, a command line client for the AirCast
// forecast gateway. It submits a forecast job and polls until the forecast
// is ready, then prints it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/forecast/poller"
	"github.com/aircast/aircast/internal/geo/nominatim"
	"github.com/aircast/aircast/pkg/aircast"
	"github.com/aircast/aircast/pkg/forecast"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	defaultGateway := os.Getenv("AIRCAST_GATEWAY_URL")
	if defaultGateway == "" {
		defaultGateway = "http://localhost:8080"
	}

	var (
		gatewayURL = flag.String("gateway", defaultGateway, "forecast gateway base URL")
		lat        = flag.Float64("lat", 0, "latitude of the forecast location")
		lon        = flag.Float64("long", 0, "longitude of the forecast location")
		date       = flag.String("date", "", "target timestamp (RFC3339 or YYYY-MM-DD)")
		interval   = flag.Duration("interval", poller.DefaultInterval, "delay between status checks")
		maxWait    = flag.Duration("max-wait", poller.DefaultMaxWait, "maximum time to wait for the forecast")
		resolve    = flag.Bool("resolve", false, "reverse geocode the location and print its region name")
		verbose    = flag.Bool("v", false, "enable debug logging")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("aircastctl", Version)
		return
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if *date == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -date")
		flag.Usage()
		os.Exit(2)
	}

	targetTime, err := forecast.ParseTimestamp(*date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *date, err)
		os.Exit(2)
	}

	req := forecast.Request{
		Lat:        *lat,
		Lon:        *lon,
		TargetTime: targetTime,
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *resolve {
		printRegion(ctx, log, req)
	}

	client := aircast.NewClient(aircast.ClientConfig{BaseURL: *gatewayURL})
	coord := poller.NewCoordinator(poller.Config{
		Client:   client,
		Interval: *interval,
		MaxWait:  *maxWait,
		Logger:   log,
	})

	session, err := coord.Start(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("could not start forecast session")
		os.Exit(1)
	}

	log.Info().
		Float64("lat", req.Lat).
		Float64("long", req.Lon).
		Time("target_time", req.TargetTime).
		Msg("forecast requested, waiting for result")

	go reportProgress(ctx, session, log)

	<-session.Done()
	final := session.Snapshot()

	switch final.State {
	case poller.StateSucceeded:
		printResult(os.Stdout, final.Result)
	case poller.StateFailed:
		log.Error().Str("reason", final.Reason).Msg("forecast failed")
		os.Exit(1)
	default:
		log.Warn().Msg("forecast cancelled")
		os.Exit(130)
	}
}

// reportProgress logs the job handle once the session moves from submitting
// to polling.
func reportProgress(ctx context.Context, session *poller.Session, log zerolog.Logger) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-session.Done():
			return
		case <-ticker.C:
		}

		snap := session.Snapshot()
		if snap.State == poller.StatePolling && snap.Handle.RequestID != "" {
			log.Info().Str("request_id", snap.Handle.RequestID).Msg("forecast job accepted")
			return
		}
	}
}

// printRegion is best effort: a geocoding failure never blocks the forecast.
func printRegion(ctx context.Context, log zerolog.Logger, req forecast.Request) {
	resolver := nominatim.NewClient(nominatim.ClientConfig{})
	region, err := resolver.Resolve(ctx, req.Lat, req.Lon)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve region name")
		return
	}
	fmt.Printf("Location: %s\n", region.Name)
}

func printResult(w io.Writer, result *forecast.Result) {
	if result == nil {
		fmt.Fprintln(w, "forecast ready, but no data was returned")
		return
	}

	// CurrentConditions is optional in the upstream payload; an absent
	// reading is the zero value, which never carries a category.
	if cc := &result.CurrentConditions; cc.Category != "" || !cc.Datetime.IsZero() {
		fmt.Fprintf(w, "Current conditions (%s):\n", formatTime(cc.Datetime))
		printReading(w, cc)
	}

	if len(result.Forecast) > 0 {
		fmt.Fprintln(w, "Forecast:")
		for i := range result.Forecast {
			r := &result.Forecast[i]
			fmt.Fprintf(w, "  %s\n", formatTime(r.Datetime))
			printReading(w, r)
		}
	}
}

func printReading(w io.Writer, r *forecast.ConditionReading) {
	fmt.Fprintf(w, "    AQI %d (%s), dominant pollutant: %s\n", r.AQI, r.Category, r.DominantPollutant)
	for name, value := range r.Pollutants {
		fmt.Fprintf(w, "    %s: %.2f\n", name, value)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format("Mon Jan 2 15:04")
}
