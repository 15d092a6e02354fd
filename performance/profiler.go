package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/gtfsjson/gtfsjson"
	flag "github.com/spf13/pflag"
)

var (
	out         = flag.StringP("out", "o", "gtfsjson_profile.pb.gz", "file path to output the profile to")
	connections = flag.Bool("connections", true, "infer connections while building documents")
	iterations  = flag.IntP("iterations", "n", 1, "number of times to build each document")
)

func main() {
	if err := run(); err != nil {
		fmt.Println("failed:", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	feeds := flag.Args()
	if len(feeds) == 0 {
		return fmt.Errorf("usage: profiler [flags] FEED...")
	}
	var statics []*gtfsjson.Static
	for _, feed := range feeds {
		static, err := gtfsjson.LoadFeed(feed)
		if err != nil {
			return err
		}
		statics = append(statics, static)
	}

	fmt.Println("starting profile")
	var profile bytes.Buffer
	if err := pprof.StartCPUProfile(&profile); err != nil {
		return err
	}
	opts := gtfsjson.BuildOptions{Connections: gtfsjson.ConnectionOptions{Enabled: *connections}}
	for i, static := range statics {
		fmt.Printf("building document %d/%d\n", i+1, len(statics))
		for j := 0; j < *iterations; j++ {
			doc := gtfsjson.BuildDocument(gtfsjson.NewIndex(static), opts)
			if err := doc.Encode(io.Discard); err != nil {
				pprof.StopCPUProfile()
				return err
			}
		}
	}
	pprof.StopCPUProfile()

	fmt.Println("writing profile to", *out)
	return os.WriteFile(*out, profile.Bytes(), 0644)
}
