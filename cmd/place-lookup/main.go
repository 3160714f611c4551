// Command place-lookup geocodes place names in batch: each query is
// suggested and its best suggestion resolved, one result line per query.
//
// Queries come from the arguments or, when there are none, from stdin one
// per line:
//
//	place-lookup "Hoan Kiem Lake" "Hue Citadel"
//	place-lookup -country vn,la < places.txt
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"placefinder/internal/geocoding"
	"placefinder/internal/placesearch"
	"placefinder/platform/config"
	"placefinder/platform/logger"
	"placefinder/platform/validator"
)

func main() {
	country := flag.String("country", "", "comma separated country codes (defaults to GEOCODER_COUNTRY_CODES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting place lookup")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	region, err := regionFor(validator.New(), *country, cfg.GetGeocoderCountryCodes())
	if err != nil {
		log.Error("invalid -country", "value", *country, "error", err)
		os.Exit(2)
	}

	fetcher := placesearch.NewFetcher(geocoding.NewNominatim(cfg, log), cfg.GetGeocoderTimeout())

	queries := flag.Args()
	if len(queries) == 0 {
		queries, err = readQueries(os.Stdin)
		if err != nil {
			log.Error("failed to read queries", "error", err)
			os.Exit(1)
		}
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() {
		_ = out.Flush()
	}()

	failed := 0
	for _, query := range queries {
		if ctx.Err() != nil {
			log.Info("interrupted")
			break
		}
		line, err := lookup(ctx, fetcher, query, region)
		if err != nil {
			log.Error("lookup failed", "query", query, "error", err)
			failed++
			continue
		}
		fmt.Fprintln(out, line)
	}

	log.Info("place lookup finished", "queries", len(queries), "failed", failed)
	if failed > 0 {
		_ = out.Flush()
		os.Exit(1)
	}
}

// regionFor returns the -country override, validated, or the configured
// default.
func regionFor(val *validator.Validator, country, fallback string) (placesearch.RegionFilter, error) {
	if country == "" {
		return placesearch.RegionFilter{CountryCodes: fallback}, nil
	}
	if err := val.Var(country, "countrycodes"); err != nil {
		return placesearch.RegionFilter{}, err
	}
	return placesearch.RegionFilter{CountryCodes: strings.ToLower(strings.ReplaceAll(country, " ", ""))}, nil
}

func lookup(ctx context.Context, fetcher *placesearch.Fetcher, query string, region placesearch.RegionFilter) (string, error) {
	suggestions, err := fetcher.Suggest(ctx, query, region)
	if err != nil {
		return "", err
	}
	if len(suggestions) == 0 {
		return fmt.Sprintf("%s\t-\t-\t-", query), nil
	}

	best := suggestions[0]
	detail, err := fetcher.Resolve(ctx, best)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\t%s\t%.7f\t%.7f", query, best.Label, detail.Point.Lat, detail.Point.Lon), nil
}

func readQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, scanner.Err()
}
