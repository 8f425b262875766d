//go:build linux

package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sonroyaalmerol/kmsglog/internal/config"
	"github.com/sonroyaalmerol/kmsglog/internal/kmsg"
	"github.com/sonroyaalmerol/kmsglog/internal/syslog"
)

var Version = "v0.0.0"

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Sink config file (ignored when missing)")
	level := flag.String("level", "", "Most verbose level written, overrides the config file")
	priority := flag.String("priority", "info", "Level of the logged message")
	withPID := flag.Bool("pid", false, "Add [pid] after the priority prefix")
	tag := flag.String("tag", "", "Identifier written before the pid")
	jsonInput := flag.Bool("json", false, "Treat the message as a JSON object of fields, or stdin lines as JSON entries")
	watch := flag.Bool("watch", false, "Reload the level from the config file while reading stdin")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println(Version)
		return
	}

	opts, err := loadOptions(*configPath)
	if err != nil {
		log.Fatalf("kmsg-logger: %v", err)
	}
	if *level != "" {
		if opts.MaxLevel, err = syslog.ParseLevel(*level); err != nil {
			log.Fatalf("kmsg-logger: %v", err)
		}
	}
	if *withPID {
		opts.WithPID = true
	}
	if *tag != "" {
		opts.Tag = *tag
	}

	msgLevel, err := syslog.ParseLevel(*priority)
	if err != nil {
		log.Fatalf("kmsg-logger: %v", err)
	}

	if err := syslog.InitWithOptions(opts); err != nil {
		switch {
		case errors.Is(err, kmsg.ErrPermissionDenied):
			log.Fatalf("kmsg-logger: %v (writing the kernel log needs root or CAP_SYSLOG)", err)
		default:
			log.Fatalf("kmsg-logger: %v", err)
		}
	}
	sink := syslog.Active()

	// anything else in this process that uses the log package goes to the kernel log too
	log.SetFlags(0)
	log.SetOutput(syslog.NewLogWriter(sink, zerolog.InfoLevel))

	if *watch {
		if watcher, err := config.WatchSinkLevel(*configPath, sink); err != nil {
			syslog.L.Warn().WithMessage("config watch disabled").WithField("error", err.Error()).Write()
		} else {
			defer watcher.Close()
		}
	}

	if args := flag.Args(); len(args) > 0 {
		msg := strings.Join(args, " ")
		if *jsonInput {
			syslog.L.WithLevel(msgLevel).WithJSON(msg).Write()
		} else {
			logAt(msgLevel, msg)
		}
		exitOnDrops(sink)
		return
	}

	if err := readStdin(os.Stdin, msgLevel, *jsonInput); err != nil {
		fmt.Fprintf(os.Stderr, "kmsg-logger: %v\n", err)
		os.Exit(1)
	}
	exitOnDrops(sink)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] [message]\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()

	fmt.Fprintf(out, "\nConfig file properties (%s: %s):\n", config.SinkSectionType, config.DefaultSinkID)
	_ = config.NewSinkConfig().Describe(out, config.SinkSectionType)
}

func loadOptions(path string) (syslog.Options, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return syslog.DefaultOptions(), nil
	}
	return config.LoadSinkOptions(path)
}

func logAt(level zerolog.Level, msg string) {
	syslog.L.WithLevel(level).WithMessage(msg).Write()
}

func readStdin(r io.Reader, level zerolog.Level, jsonInput bool) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if jsonInput {
			if err := syslog.ParseAndLogEntry(strings.NewReader(line)); err != nil {
				fmt.Fprintf(os.Stderr, "kmsg-logger: skipping entry: %v\n", err)
			}
			continue
		}

		logAt(level, line)
	}
	return scanner.Err()
}

func exitOnDrops(sink *syslog.Sink) {
	if dropped := sink.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "kmsg-logger: %d record(s) could not be written\n", dropped)
		os.Exit(1)
	}
}
