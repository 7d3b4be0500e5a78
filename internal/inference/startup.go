package inference

import (
	"context"
	"fmt"
	"io"
	"time"
)

// EnsureReady checks that the model server is reachable and warms up
// both classifier heads so the first user request doesn't pay the
// cold-load penalty. Returns a non-nil error if the server is
// unreachable.
func EnsureReady(ctx context.Context, c *Client, w io.Writer) error {
	if !c.IsRunning(ctx) {
		return fmt.Errorf("model server is not reachable at %s", c.baseURL)
	}

	warmCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	fmt.Fprintf(w, "language model: warming up...\n")
	if _, err := c.DetectLanguage(warmCtx, "hello"); err != nil {
		fmt.Fprintf(w, "language model: warm-up failed (non-fatal): %v\n", err)
	} else {
		fmt.Fprintf(w, "language model: warm\n")
	}

	fmt.Fprintf(w, "intent model: warming up...\n")
	if _, err := c.ClassifyIntent(warmCtx, "hello"); err != nil {
		fmt.Fprintf(w, "intent model: warm-up failed (non-fatal): %v\n", err)
	} else {
		fmt.Fprintf(w, "intent model: warm\n")
	}

	return nil
}
