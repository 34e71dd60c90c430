package media

import "context"

// Result is the settled value of one asynchronous file read.
type Result struct {
	Value string
	Err   error
}

// Go runs fn on its own goroutine and delivers exactly one Result on the returned channel.
func Go(ctx context.Context, fn func(context.Context) (string, error)) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		value, err := fn(ctx)
		out <- Result{Value: value, Err: err}
	}()
	return out
}
