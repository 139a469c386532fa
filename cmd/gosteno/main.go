// Package main runs the gosteno daemon: it reads chords off a Stenura
// or Gemini PR writer, translates them through a dictionary, and
// writes the resulting text to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gosteno/dict"
	"github.com/jcorbin/gosteno/gemini"
	"github.com/jcorbin/gosteno/internal/flushio"
	"github.com/jcorbin/gosteno/internal/logio"
	"github.com/jcorbin/gosteno/internal/panicerr"
	"github.com/jcorbin/gosteno/stenura"
	"github.com/jcorbin/gosteno/translate"
)

func main() {
	var (
		device       string
		dictPath     string
		protocol     string
		pollInterval time.Duration
		trace        bool
		transcript   string
	)
	flag.StringVar(&device, "device", "/dev/ttyUSB0", "serial device path")
	flag.StringVar(&dictPath, "dict", "", "dictionary JSON file (required)")
	flag.StringVar(&protocol, "protocol", "stenura", "writer protocol: stenura or gemini")
	flag.DurationVar(&pollInterval, "poll-interval", 0, "override the Stenura poll cadence (0 keeps the default)")
	flag.BoolVar(&trace, "trace", false, "log protocol-level trace messages")
	flag.StringVar(&transcript, "transcript", "", "also append translated text to this file")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	if dictPath == "" {
		log.Errorf("missing -dict")
		return
	}

	d := dict.NewDictionary()
	f, err := os.Open(dictPath)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	err = dict.LoadJSON(d, f)
	f.Close()
	if err != nil {
		log.Errorf("loading dictionary: %v", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	src, run, closeSrc, err := openSource(protocol, device, pollInterval, &log, trace)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer closeSrc()

	out := flushio.NewWriteFlusher(os.Stdout)
	if transcript != "" {
		tf, err := os.OpenFile(transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		defer tf.Close()
		out = flushio.WriteFlushers(out, flushio.NewWriteFlusher(tf))
	}

	tr := translate.New(d)
	w := translate.NewWriter(out)

	eg, ctx := errgroup.WithContext(ctx)
	if run != nil {
		eg.Go(func() error { return run(ctx) })
	}
	eg.Go(func() error {
		return panicerr.Recover("translate.Run", func() error {
			return translate.Run(ctx, src, tr, w)
		})
	})

	if err := eg.Wait(); err != nil && ctx.Err() == nil {
		log.ErrorIf(err)
	}
}

// openSource opens the configured writer, returning a translate.ChordSource
// to read strokes from, an optional background run function that must
// be driven concurrently with it (nil if none is needed), and a closer
// to release the underlying device.
func openSource(protocol, device string, pollInterval time.Duration, log *logio.Logger, trace bool) (src translate.ChordSource, run func(context.Context) error, closeSrc func(), err error) {
	switch protocol {
	case "stenura":
		f, err := stenura.OpenSerial(device)
		if err != nil {
			return nil, nil, func() {}, err
		}
		var opts []stenura.ClientOption
		if trace {
			opts = append(opts, stenura.WithLogf(func(level, mess string, args ...interface{}) {
				log.Printf(level, mess, args...)
			}))
		}
		if pollInterval > 0 {
			opts = append(opts, stenura.WithPollInterval(pollInterval))
		}
		client := stenura.NewClient(f, opts...)
		return client, client.Run, func() { f.Close() }, nil

	case "gemini":
		f, err := stenura.OpenSerial(device)
		if err != nil {
			return nil, nil, func() {}, err
		}
		// gemini.Reader blocks in a plain io.ReadFull with no cancellation
		// of its own; closing the fd on ctx.Done is what unblocks it.
		run := func(ctx context.Context) error {
			<-ctx.Done()
			f.Close()
			return nil
		}
		return gemini.NewReader(f), run, func() { f.Close() }, nil

	default:
		return nil, nil, func() {}, fmt.Errorf("unknown protocol %q", protocol)
	}
}
