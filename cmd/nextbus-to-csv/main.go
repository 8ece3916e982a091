package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/nextbus-to-csv/archive"
	"github.com/theoremus-urban-solutions/nextbus-to-csv/config"
	"github.com/theoremus-urban-solutions/nextbus-to-csv/formatter"
	"github.com/theoremus-urban-solutions/nextbus-to-csv/internal"
	"github.com/theoremus-urban-solutions/nextbus-to-csv/nextbus"
	"github.com/theoremus-urban-solutions/nextbus-to-csv/stitch"
)

func main() {
	mode := flag.String("mode", "csv", "csv|read")
	format := flag.String("format", "", "csv|gtfsrt|siri (overrides config)")
	out := flag.String("o", "", "output file (default stdout)")
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := internal.InitLogging(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}

	if flag.NArg() == 0 {
		log.Fatal("No archive paths given")
	}

	w, closeOut, err := openOutput(*out)
	if err != nil {
		log.Fatalf("Failed to open output: %v", err)
	}

	switch *mode {
	case "csv":
		runCSV(cfg, w, flag.Args())
	case "read":
		runRead(w, flag.Args())
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	if err := closeOut(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}
}

// runCSV streams the archives through the stitching pipeline and writes
// the accepted sequence in the configured format.
func runCSV(cfg config.AppConfig, w io.Writer, paths []string) {
	src := archive.OpenAll(paths...)
	// The extraction process exit status only surfaces at close; a
	// failure there invalidates the run even after a full drain.
	defer func() {
		if err := src.Close(); err != nil {
			log.Fatalf("Archive close failed: %v", err)
		}
	}()

	dedup := stitch.NewDeduplicator()
	dedup.WindowSeconds = cfg.Dedup.WindowSeconds
	dedup.CoordinateEpsilon = cfg.Dedup.CoordinateEpsilon
	dedup.HistoryDepth = cfg.Dedup.HistoryDepth
	dedup.Warnings = stitch.NewWarningAggregator()

	stream, err := stitch.Locations(nextbus.NewFramer(src), dedup)
	if err != nil {
		log.Fatalf("Failed to decode archive: %v", err)
	}

	switch cfg.Output.Format {
	case "csv":
		err = formatter.WriteCSV(w, stream)
	case "gtfsrt":
		var buf []byte
		buf, err = formatter.MarshalVehiclePositions(formatter.BuildVehiclePositions(stream))
		if err == nil {
			_, err = w.Write(buf)
		}
	case "siri":
		res := formatter.BuildVehicleMonitoring(stream, cfg.Output.ProducerRef)
		_, err = w.Write(formatter.MarshalVehicleMonitoring(res))
	default:
		log.Fatalf("Unknown output format %q", cfg.Output.Format)
	}
	if err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	dedup.Warnings.LogAll(paths[0])
}

// runRead decodes an existing (optionally compressed) record stream and
// prints the records.
func runRead(w io.Writer, paths []string) {
	src := archive.OpenAll(paths...)
	defer func() {
		if err := src.Close(); err != nil {
			log.Fatalf("Archive close failed: %v", err)
		}
	}()

	r := formatter.NewCSVReader(src)
	for r.Scan() {
		loc := r.Location()
		fmt.Fprintf(w, "{timestamp:%g id:%d route:%s dir:%s lat:%g lon:%g heading:%d speed:%d}\n",
			loc.Timestamp, loc.ID, loc.Route, loc.DirString(), loc.Lat, loc.Lon, loc.Heading, loc.Speed)
	}
	if err := r.Err(); err != nil {
		log.Fatalf("Failed to read records: %v", err)
	}
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
