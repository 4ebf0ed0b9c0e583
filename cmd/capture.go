package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/page"
	"github.com/sells-group/capture-cli/internal/protocol"
	"github.com/sells-group/capture-cli/internal/status"
	"github.com/sells-group/capture-cli/internal/store"
)

var (
	captureFixture      string
	captureProgressPath string
)

var captureCmd = &cobra.Command{
	Use:   "capture <record-url>",
	Short: "Capture one record from its detail page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := args[0]

		src, err := buildSource(url)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		indicator := status.New(nil)
		indicator.Show(status.StateWorking, "capturing "+url)
		// Hide immediately: a delayed hide scheduled in a defer would never
		// fire before the process exits.
		defer indicator.Hide(0)

		payload, err := runCapture(ctx, src)
		if err != nil {
			var failure *protocol.Failure
			if errors.As(err, &failure) {
				indicator.Show(status.StateError, failure.UserMessage())
				fmt.Fprintln(os.Stderr, failure.UserMessage())
				return err
			}
			indicator.Show(status.StateError, "capture failed")
			return err
		}

		result, err := store.Apply(ctx, st, payload.Record, payload.Related)
		if err != nil {
			indicator.Show(status.StateError, "saving record failed")
			return eris.Wrap(err, "apply record")
		}

		indicator.Show(status.StateSuccess, "captured "+payload.ID)
		fmt.Printf("%s %s: %d inserted, %d updated\n",
			payload.ObjectType, payload.ID, result.Inserted, result.Updated)
		return nil
	},
}

// buildSource picks the page source: a saved fixture when --fixture is set,
// otherwise a live fetch of the record URL.
func buildSource(url string) (page.Source, error) {
	if captureFixture != "" {
		text, err := os.ReadFile(captureFixture)
		if err != nil {
			return nil, eris.Wrapf(err, "read fixture %s", captureFixture)
		}
		src := page.NewStatic(url, string(text))
		if captureProgressPath != "" {
			src.WithSlot(page.SlotProgressPath, captureProgressPath)
		}
		return src, nil
	}

	opts := []page.HTTPOption{page.WithRateLimit(cfg.Fetch.RatePerSec)}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, page.WithUserAgent(cfg.Fetch.UserAgent))
	}
	return page.NewHTTP(url, opts...), nil
}

// runCapture wires the two protocol peers in-process and drives one request.
// The executor is installed lazily by the injector, mirroring the unreliable
// startup ordering of a real page context: the first probe finds nobody.
func runCapture(ctx context.Context, src page.Source) (*protocol.Payload, error) {
	ext, err := initExtractor()
	if err != nil {
		return nil, err
	}

	orchConn, execConn := protocol.Pipe(4)
	defer orchConn.Close()

	execCtx, stopExecutor := context.WithCancel(ctx)
	defer stopExecutor()

	injector := protocol.InjectorFunc(func(context.Context) error {
		executor := protocol.NewExecutor(execConn, ext, src)
		go func() {
			if err := executor.Run(execCtx); err != nil && execCtx.Err() == nil {
				zap.L().Warn("executor stopped", zap.Error(err))
			}
		}()
		return nil
	})

	orch := protocol.NewOrchestrator(orchConn, injector,
		protocol.WithConfig(protocolConfig()))

	return orch.Capture(ctx)
}

func init() {
	captureCmd.Flags().StringVar(&captureFixture, "fixture", "", "path to a saved visible-text fixture instead of fetching the page")
	captureCmd.Flags().StringVar(&captureProgressPath, "progress-path", "", "progress-path widget text for fixture captures")
	rootCmd.AddCommand(captureCmd)
}
