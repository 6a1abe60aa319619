package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mediazip/internal/pattern"
)

// metaRecord - метаданные одного медиа и, необязательно, его URL.
type metaRecord struct {
	pattern.Metadata `yaml:",inline"`
	URL              string `yaml:"url"`
}

var nameOpts struct {
	md       pattern.Metadata
	metaFile string
	url      string
}

func init() {
	rootCmd.AddCommand(nameCmd)

	f := nameCmd.Flags()
	f.StringVar(&nameOpts.md.AuthorID, "id", "", "author handle")
	f.StringVar(&nameOpts.md.AuthorName, "name", "", "author display name")
	f.StringVar(&nameOpts.md.Text, "context", "", "post text")
	f.StringVar(&nameOpts.md.Time, "time", "", "post timestamp")
	f.StringVar(&nameOpts.md.Link, "link", "", "post link")
	f.StringVarP(&nameOpts.metaFile, "meta", "m", "", "YAML or JSON file with one record or a list, '-' for stdin")
	f.StringVar(&nameOpts.url, "url", "", "media URL, adds the file extension")
}

var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Resolve the pattern against metadata",
	Long:  "Prints one file name per metadata record. Metadata comes from flags or from a YAML/JSON file.",
	Example: `  mediazip name -p '{name}_{time:"yyyy-mm-dd"}' --name Alice --time 2023-05-01T10:20:30Z
  mediazip name -p '{id}-{context}[0:10]' -m posts.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records := []metaRecord{{Metadata: nameOpts.md}}
		if nameOpts.metaFile != "" {
			var err error
			records, err = loadMetadataFile(nameOpts.metaFile)
			if err != nil {
				return err
			}
		}

		res, err := newResolver()
		if err != nil {
			return err
		}

		return writeNames(cmd.OutOrStdout(), res, rootOpts.pattern, records, nameOpts.url)
	},
}

func writeNames(w io.Writer, res *pattern.Resolver, tmpl string, records []metaRecord, defaultURL string) error {
	tmpl = cmp.Or(tmpl, pattern.DefaultPattern)
	for _, rec := range records {
		name := res.Resolve(tmpl, rec.Metadata)
		if url := cmp.Or(rec.URL, defaultURL); url != "" {
			name += pattern.Extension(url)
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func loadMetadataFile(fileName string) ([]metaRecord, error) {
	input := os.Stdin
	if fileName != "-" {
		var err error
		input, err = os.Open(fileName)
		if err != nil {
			return nil, err
		}
		defer input.Close()
	}
	return loadMetadata(input)
}

// loadMetadata читает список записей или одну запись. JSON разбирается
// как подмножество YAML.
func loadMetadata(r io.Reader) ([]metaRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var list []metaRecord
	if err := yaml.Unmarshal(data, &list); err != nil {
		var one metaRecord
		if err := yaml.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		list = []metaRecord{one}
	}

	if len(list) == 0 {
		return nil, errors.New("no metadata records")
	}
	return list, nil
}
