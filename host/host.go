package host

import (
	"context"
	"strings"

	"github.com/randalmurphal/promptbox/model"
)

// Host is a server that runs models.
// Implementations must be safe for concurrent use.
type Host interface {
	// Name returns the configured host name.
	Name() string

	// ContextLimit returns the context size of model in tokens.
	// Zero means the host does not limit the context and enforcement is
	// skipped unless the options carry their own limit.
	ContextLimit(ctx context.Context, model string) (int, error)

	// Send submits a prompt and streams the answer.
	// The channel is closed after a chunk with Done or Err set.
	Send(ctx context.Context, req Request) (<-chan Chunk, error)
}

// Request is one prompt for a host.
type Request struct {
	Model   string
	Prompt  string
	System  string
	Options model.Options
}

// Chunk is one piece of a streamed answer.
type Chunk struct {
	Content string
	Usage   *model.Usage // set on the final chunk when the host reports it
	Done    bool
	Err     error
}

// Response is a fully collected answer.
type Response struct {
	Content string
	Usage   model.Usage
}

// Collect drains the stream returned by Send into a Response.
func Collect(ch <-chan Chunk, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	resp := &Response{}
	for chunk := range ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		b.WriteString(chunk.Content)
		if chunk.Usage != nil {
			resp.Usage = *chunk.Usage
		}
	}
	resp.Content = b.String()
	return resp, nil
}

// send delivers c unless ctx is done first.
func send(ctx context.Context, ch chan<- Chunk, c Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
