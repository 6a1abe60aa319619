package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediazip/internal/loader"
	"mediazip/internal/manager"
	"mediazip/internal/model"
	"mediazip/internal/provider"
)

var validMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4"}

var downloadOpts struct {
	urlsFile   string
	outputFile string
	statusFile string
	checkOnly  bool
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	f := downloadCmd.Flags()
	f.StringVarP(&downloadOpts.urlsFile, "urls", "u", "", "get links from file instead of command line, use '-' for stdin")
	f.StringVarP(&downloadOpts.outputFile, "output", "o", "", "output zip file, use '-' for stdout")
	f.StringVarP(&downloadOpts.statusFile, "status", "s", "", "save status to file, use '-' for stdout")
	f.BoolVarP(&downloadOpts.checkOnly, "nothing", "n", false, "don't download anything, check only with HEAD requests")
}

var downloadCmd = &cobra.Command{
	Use:   "download [LINK...]",
	Short: "Download media of posts into a zip archive",
	Example: `  mediazip download -o media.zip https://x.com/alice/status/123
  mediazip download -p '{id}_{time:"yyyymmdd"}' -u links.txt -o - > media.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !downloadOpts.checkOnly && downloadOpts.outputFile == "" {
			return errors.New("output file required")
		}

		links, err := collectLinks(args, downloadOpts.urlsFile)
		if err != nil {
			return err
		}

		res, err := newResolver()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client := http.DefaultClient

		prv := provider.New(client, rootOpts.apiURL, rootOpts.timeout)
		media, err := prv.FetchAll(ctx, links)
		if err != nil {
			slog.Warn("some posts failed", "error", err)
		}
		if len(media) == 0 {
			return errors.Join(errors.New("no media found"), err)
		}

		files := manager.FilesFromMedia(res, rootOpts.pattern, media)
		ldr := loader.New(client, validMIMETypes)

		if downloadOpts.checkOnly {
			files, err = ldr.Check(ctx, files)
		} else {
			files, err = download(ctx, ldr, files, downloadOpts.outputFile)
		}
		if err != nil {
			return err
		}

		return writeStatus(cmd.OutOrStdout(), files, downloadOpts.statusFile)
	},
}

func download(ctx context.Context, ldr *loader.Loader, files []model.File, outputFile string) (_ []model.File, err error) {
	if outputFile == "-" {
		return writeArchive(ctx, ldr, files, os.Stdout)
	}

	output, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("create file failed: %w", err)
	}
	defer func() {
		if cerr := output.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close file failed: %w", cerr)
		}
	}()

	return writeArchive(ctx, ldr, files, output)
}

// writeArchive пишет архив через буфер. Хвост архива попадает в out только
// при Flush, поэтому его ошибка возвращается.
func writeArchive(ctx context.Context, ldr *loader.Loader, files []model.File, out io.Writer) ([]model.File, error) {
	w := bufio.NewWriter(out)

	files, err := ldr.Download(ctx, files, w)
	if ferr := w.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("write archive failed: %w", ferr)
	}
	return files, err
}

func writeStatus(stdout io.Writer, files []model.File, statusFile string) error {
	if rootOpts.verbose {
		for _, f := range files {
			slog.Debug("file", "name", f.Name, "status", f.Status, "error", f.ErrorMsg)
		}
	}

	if statusFile == "" {
		return nil
	}

	buf, err := json.MarshalIndent(files, "", "    ")
	if err != nil {
		return err
	}

	if statusFile == "-" {
		_, err = stdout.Write(append(buf, '\n'))
		return err
	}

	if err := os.WriteFile(statusFile, buf, 0666); err != nil {
		return fmt.Errorf("write status failed: %w", err)
	}
	return nil
}

func loadURLsFromFile(fileName string) ([]string, error) {
	input := os.Stdin
	if fileName != "-" {
		var err error
		input, err = os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer input.Close()
	}

	return readURLs(input)
}

// readURLs читает по ссылке в строке, пропуская пустые строки и комментарии '#'.
func readURLs(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	var urls []string

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		urls = append(urls, line)
	}

	return urls, sc.Err()
}
