// Package health probes configured MCP servers: stdio servers by
// resolving and running their command, remote servers by an HTTP
// request to their endpoint. Probes never mutate configuration.
package health

import (
	"context"
	"net/http"
	"os/exec"
	"time"

	"github.com/thoreinstein/mcpm/internal/mcp"
)

// Status is the outcome of one probe.
type Status string

const (
	// StatusHealthy indicates the probe succeeded.
	StatusHealthy Status = "healthy"

	// StatusUnhealthy indicates the probe failed or timed out.
	StatusUnhealthy Status = "unhealthy"

	// StatusUnknown indicates the server type cannot be probed.
	StatusUnknown Status = "unknown"
)

// DefaultTimeout bounds each probe.
const DefaultTimeout = 10 * time.Second

// Result pairs a status with the detail behind it.
type Result struct {
	Status Status

	// Detail explains an unhealthy or unknown status.
	Detail string
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client used for remote probes.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

// Checker probes server descriptors.
type Checker struct {
	timeout time.Duration
	client  *http.Client
}

// New creates a Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		timeout: DefaultTimeout,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check probes one server, dispatching on its transport type.
func (c *Checker) Check(ctx context.Context, server *mcp.Server) Result {
	switch {
	case server == nil:
		return Result{Status: StatusUnknown, Detail: "no descriptor"}
	case server.IsLocal():
		return c.checkStdio(ctx, server)
	case server.IsRemote():
		return c.checkHTTP(ctx, server)
	default:
		return Result{Status: StatusUnknown, Detail: "unrecognized server type " + server.Type}
	}
}

// checkStdio resolves the command and runs it with --version under the
// probe timeout. The command's exit code is ignored: many servers have
// no --version flag, and being able to start at all is the signal.
func (c *Checker) checkStdio(ctx context.Context, server *mcp.Server) Result {
	if server.Command == "" {
		return Result{Status: StatusUnhealthy, Detail: "no command configured"}
	}
	if _, err := exec.LookPath(server.Command); err != nil {
		return Result{Status: StatusUnhealthy, Detail: "command not found: " + server.Command}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, server.Command, "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	_ = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return Result{Status: StatusUnhealthy, Detail: "probe timed out"}
	}
	return Result{Status: StatusHealthy}
}

// checkHTTP issues a GET to the configured URL with the configured
// headers. 2xx and 3xx responses count as healthy.
func (c *Checker) checkHTTP(ctx context.Context, server *mcp.Server) Result {
	if server.URL == "" {
		return Result{Status: StatusUnhealthy, Detail: "no url configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		return Result{Status: StatusUnhealthy, Detail: "invalid url: " + err.Error()}
	}
	for key, value := range server.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: StatusUnhealthy, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{Status: StatusHealthy}
	}
	return Result{Status: StatusUnhealthy, Detail: resp.Status}
}
