package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/store"
)

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Capture a list of record detail pages",
	Long:  "Reads record-detail URLs from a file (one per line, # comments allowed) and captures each in turn. Captures run one at a time; the store merge is read-modify-write without isolation.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		urls, err := readURLList(batchFile)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return eris.Errorf("no URLs in %s", batchFile)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var total store.MergeResult
		failed := 0

		// One capture in flight at a time: the merge path has no
		// transactional isolation.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(1)

		for _, url := range urls {
			g.Go(func() error {
				src := page.NewHTTP(url,
					page.WithRateLimit(cfg.Fetch.RatePerSec))
				payload, err := runCapture(gctx, src)
				if err != nil {
					failed++
					zap.L().Warn("capture failed",
						zap.String("url", url),
						zap.Error(err),
					)
					return nil
				}

				result, err := store.Apply(gctx, st, payload.Record, payload.Related)
				if err != nil {
					return eris.Wrapf(err, "apply record %s", payload.ID)
				}
				total.Add(result)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("batch complete: %d inserted, %d updated, %d failed of %d\n",
			total.Inserted, total.Updated, failed, len(urls))
		return nil
	},
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open url list %s", path)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read url list %s", path)
	}
	return urls, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "urls", "", "path to file of record URLs (required)")
	_ = batchCmd.MarkFlagRequired("urls")
	rootCmd.AddCommand(batchCmd)
}
