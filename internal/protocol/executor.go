package protocol

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/extract"
	"github.com/sells-group/capture-cli/internal/page"
)

// Executor answers the orchestrator from inside the page's context: PONGs
// liveness probes and runs extraction commands. Extraction is cooperative
// and single-flight within the executor; the line scan itself has no
// suspension points, so each run observes one consistent text snapshot.
type Executor struct {
	conn Conn
	ext  *extract.Extractor
	src  page.Source
}

// NewExecutor binds an executor to its connection, extractor, and page.
func NewExecutor(conn Conn, ext *extract.Extractor, src page.Source) *Executor {
	return &Executor{conn: conn, ext: ext, src: src}
}

// Run serves protocol messages until the context ends.
func (x *Executor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "executor: run")
		case msg := <-x.conn.Recv():
			if err := x.handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (x *Executor) handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MsgPing:
		return x.conn.Send(ctx, Message{Type: MsgPong})

	case MsgRunExtraction:
		result, err := x.ext.Extract(ctx, x.src)
		if err != nil {
			zap.L().Warn("extraction failed",
				zap.String("url", x.src.URL()),
				zap.Error(err),
			)
			return x.conn.Send(ctx, Message{
				Type:      MsgExtractionError,
				RequestID: msg.RequestID,
				Error: &WireError{
					Message: err.Error(),
					Stack:   eris.ToString(err, true),
				},
			})
		}
		return x.conn.Send(ctx, Message{
			Type:      MsgExtractionResult,
			RequestID: msg.RequestID,
			Payload: &Payload{
				Record:  result.Record,
				Related: result.Related,
			},
		})

	default:
		// Unknown frames are ignored, not errors: the peer may be newer.
		return nil
	}
}
