package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mediazip/internal/config"
	"mediazip/internal/logger"
	"mediazip/internal/pattern"
)

var rootOpts struct {
	pattern    string
	timeZone   string
	dateLayout string
	apiURL     string
	timeout    time.Duration
	verbose    bool
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&rootOpts.pattern, "pattern", "p", pattern.DefaultPattern, "file name pattern")
	f.StringVar(&rootOpts.timeZone, "tz", "Local", "time zone for dates, e.g. UTC or Europe/Moscow")
	f.StringVar(&rootOpts.dateLayout, "date-layout", "1/2/2006", "layout of {time} in Go time notation")
	f.StringVar(&rootOpts.apiURL, "api", "https://api.fxtwitter.com", "base URL of the post API")
	f.DurationVar(&rootOpts.timeout, "timeout", 15*time.Second, "timeout of a post API request")
	f.BoolVarP(&rootOpts.verbose, "verbose", "v", false, "enable debug logging to stderr")
}

var rootCmd = &cobra.Command{
	Use:          "mediazip",
	Short:        "Name and download media of X/Twitter posts",
	Long:         "mediazip resolves file name patterns against post metadata, fetches media of posts and packs them into a zip archive.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func setupLogger() {
	level := slog.LevelInfo
	if rootOpts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(config.Logger{Level: level, Plaintext: true}, os.Stderr))
}

func newResolver() (*pattern.Resolver, error) {
	loc, err := time.LoadLocation(rootOpts.timeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", rootOpts.timeZone, err)
	}
	return pattern.New(pattern.Config{
		Location:   loc,
		DateLayout: rootOpts.dateLayout,
	}), nil
}
