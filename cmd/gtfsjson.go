package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gtfsjson/gtfsjson"
	"github.com/gtfsjson/gtfsjson/config"
	"github.com/gtfsjson/gtfsjson/internal/logging"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// A .env file is optional; it only seeds the GTFSJSON_* variables.
	_ = godotenv.Load()
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	logger := logging.NewStructuredLogger(stderr, slog.LevelInfo)
	return &cli.App{
		Name:      "gtfsjson",
		Usage:     "build a JSON route document from a GTFS static feed",
		ArgsUsage: "[feed directory or .zip]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML file with feedPath and connections settings",
				Value: config.DefaultFile,
			},
			&cli.BoolFlag{
				Name:  "connections",
				Usage: "infer connections to other routes at each trip's terminal stop",
				Value: true,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := settings(ctx)
			if err != nil {
				return err
			}
			idx, err := load(logger, cfg.FeedPath)
			if err != nil {
				return err
			}
			start := time.Now()
			doc := gtfsjson.BuildDocument(idx, gtfsjson.BuildOptions{
				Connections: gtfsjson.ConnectionOptions{Enabled: cfg.Connections},
			})
			w := bufio.NewWriter(ctx.App.Writer)
			if err := doc.Encode(w); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("failed to write document: %w", err)
			}
			logging.LogOperation(logger, "document_written",
				slog.Int("routes", len(doc.Routes)),
				slog.Int("calendars", len(doc.Calendars)),
				slog.Bool("connections", cfg.Connections),
				slog.Duration("duration", time.Since(start)))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "print a summary of each route's destinations",
				ArgsUsage: "[feed]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "print each trip and its connections",
					},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := settings(ctx)
					if err != nil {
						return err
					}
					idx, err := load(logger, cfg.FeedPath)
					if err != nil {
						return err
					}
					opts := gtfsjson.ConnectionOptions{Enabled: cfg.Connections}
					for _, route := range idx.Static().Routes {
						vectors := gtfsjson.GroupTrips(idx, route.Id)
						if len(vectors) == 0 {
							continue
						}
						fmt.Fprintf(ctx.App.Writer, "- %s", formatRoute(idx, route, vectors, opts, 2, ctx.Bool("verbose")))
					}
					return nil
				},
			},
			{
				Name:      "geojson",
				Usage:     "write each route vector's shape as a GeoJSON feature collection",
				ArgsUsage: "[feed]",
				Action: func(ctx *cli.Context) error {
					cfg, err := settings(ctx)
					if err != nil {
						return err
					}
					idx, err := load(logger, cfg.FeedPath)
					if err != nil {
						return err
					}
					b, err := gtfsjson.VectorFeatures(idx).MarshalJSON()
					if err != nil {
						return fmt.Errorf("failed to marshal GeoJSON: %w", err)
					}
					if _, err := fmt.Fprintln(ctx.App.Writer, string(b)); err != nil {
						return fmt.Errorf("failed to write GeoJSON: %w", err)
					}
					return nil
				},
			},
		},
	}
}

// settings resolves the configuration: file and environment first, then the
// --connections flag and the feed argument.
func settings(ctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(ctx.String("config"), ctx.IsSet("config"))
	if err != nil {
		return config.Config{}, err
	}
	if ctx.IsSet("connections") {
		cfg.Connections = ctx.Bool("connections")
	}
	if ctx.Args().Len() > 0 {
		cfg.FeedPath = ctx.Args().First()
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func load(logger *slog.Logger, path string) (*gtfsjson.Index, error) {
	start := time.Now()
	fsys, closer, err := gtfsjson.OpenFeed(path)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(closer, logger, "close_feed")
	static, err := gtfsjson.ParseStatic(fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to load GTFS static data: %w", err)
	}
	idx := gtfsjson.NewIndex(static)
	logging.LogWarnings(logger, static.Warnings)
	logging.LogWarnings(logger, idx.CheckReferences())
	logging.LogOperation(logger, "feed_loaded",
		slog.String("feed", path),
		slog.Int("routes", len(static.Routes)),
		slog.Int("trips", len(static.Trips)),
		slog.Int("stop_times", len(static.StopTimes)),
		slog.Int("warnings", len(static.Warnings)),
		slog.Duration("duration", time.Since(start)))
	return idx, nil
}

func formatRoute(idx *gtfsjson.Index, route gtfsjson.Route, vectors []gtfsjson.Vector, opts gtfsjson.ConnectionOptions, indent int, printTrips bool) string {
	var b strings.Builder
	rc := color.New(color.FgCyan)
	vc := color.New(color.FgMagenta)
	tc := color.New(color.FgGreen)
	newLine := fmt.Sprintf("\n%*s", indent, "")
	fmt.Fprintf(&b,
		"RouteID %s  ShortName %s  Type %s  Agency %s",
		rc.Sprint(route.Id),
		rc.Sprint(unEmpty(route.ShortName)),
		rc.Sprint(route.Type),
		rc.Sprint(unEmpty(route.AgencyId)),
	)
	if waypoint := idx.Waypoint(route.Id); waypoint != "" {
		fmt.Fprintf(&b, "  Waypoint %s", rc.Sprint(waypoint))
	}
	for _, vector := range vectors {
		fmt.Fprintf(&b, "%sDestination %s  Trips %s  Shape %s  Points %s",
			newLine,
			vc.Sprint(vector.Destination),
			vc.Sprint(len(vector.Trips)),
			vc.Sprint(unEmpty(vector.ShapeId)),
			vc.Sprint(len(idx.ShapePoints(vector.ShapeId))),
		)
		if !printTrips {
			continue
		}
		for _, trip := range vector.Trips {
			start := "<none>"
			if t, ok := gtfsjson.StartTime(idx, trip.Id); ok {
				start = t.String()
			}
			fmt.Fprintf(&b, "%s  TripID %s  Service %s  Start %s  Stops %s",
				newLine,
				tc.Sprint(trip.Id),
				tc.Sprint(trip.ServiceId),
				tc.Sprint(start),
				tc.Sprint(len(idx.StopTimesForTrip(trip.Id))),
			)
			for _, c := range gtfsjson.ResolveConnections(idx, trip, opts) {
				fmt.Fprintf(&b, "%s    -> %s %s (%s) at %s",
					newLine,
					tc.Sprint(unEmpty(c.ShortName)),
					tc.Sprint(c.Headsign),
					tc.Sprint(c.TripId),
					tc.Sprint(c.Time),
				)
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func unEmpty(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
