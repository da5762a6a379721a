package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// do executes req honouring the context deadline, falling back to the client timeout.
func do(ctx context.Context, client *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if fallback := time.Now().Add(timeout); timeout > 0 && fallback.Before(deadline) {
			deadline = fallback
		}
		return client.DoDeadline(req, resp, deadline)
	}
	if timeout <= 0 {
		return client.Do(req, resp)
	}
	return client.DoTimeout(req, resp, timeout)
}

// truncate keeps error bodies readable in logs.
func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return fmt.Sprintf("%s...(%d bytes)", body[:limit], len(body))
}
