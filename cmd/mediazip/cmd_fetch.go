package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"mediazip/internal/provider"
)

var fetchOpts struct {
	urlsFile string
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchOpts.urlsFile, "urls", "u", "", "get links from file instead of command line, use '-' for stdin")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [LINK...]",
	Short: "Print media of posts as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := collectLinks(args, fetchOpts.urlsFile)
		if err != nil {
			return err
		}

		prv := provider.New(http.DefaultClient, rootOpts.apiURL, rootOpts.timeout)
		media, err := prv.FetchAll(cmd.Context(), links)
		if err != nil {
			slog.Warn("some posts failed", "error", err)
		}
		if len(media) == 0 {
			return errors.Join(errors.New("no media found"), err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(media); err != nil {
			return fmt.Errorf("write media failed: %w", err)
		}
		return nil
	},
}

func collectLinks(args []string, urlsFile string) ([]string, error) {
	links := args
	if urlsFile != "" {
		var err error
		links, err = loadURLsFromFile(urlsFile)
		if err != nil {
			return nil, err
		}
	}
	if len(links) == 0 {
		return nil, errors.New("links required")
	}
	return links, nil
}
