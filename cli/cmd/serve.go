package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/inspect"
	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/mcpserver"
	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/notify"
	"github.com/kordless/mystic/notify/redis"
	"github.com/kordless/mystic/notify/webhook"
	"github.com/kordless/mystic/policy"
	"github.com/kordless/mystic/state"
)

// notifyCloser is implemented by both notify subscribers; logx.Subscriber
// itself carries no Close method since most subscribers (e.g. in-process
// ones) have nothing to release.
type notifyCloser interface {
	Close() error
}

// notifyChoice holds parsed call-logger subscriber configuration.
type notifyChoice struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

// ServeCommand returns the serve command. Serve is the only command
// that runs the MCP server loop; every other command is read-only
// against a demo catalog.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server over stdio (the only execution entrypoint)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "state-snapshots",
				Usage: "Max state snapshots to retain (0 = unbounded)",
				Value: 0,
			},
			&cli.IntFlag{
				Name:  "log-ring-size",
				Usage: "Call log recent-history ring buffer size (0 disables history)",
				Value: 256,
			},
			&cli.StringFlag{
				Name:  "notify",
				Usage: "Call event subscriber: webhook, redis",
			},
			&cli.StringFlag{
				Name:  "notify-url",
				Usage: "Subscriber endpoint URL (required when --notify is set)",
			},
			&cli.StringFlag{
				Name:  "notify-channel",
				Usage: "Pub/sub channel for the redis subscriber",
			},
			&cli.StringSliceFlag{
				Name:  "notify-header",
				Usage: "Custom HTTP header as key=value (repeatable, webhook only)",
			},
			&cli.DurationFlag{
				Name:  "notify-timeout",
				Usage: "Subscriber request timeout",
				Value: webhook.DefaultTimeout,
			},
			&cli.IntFlag{
				Name:  "notify-retries",
				Usage: "Subscriber retry attempts",
				Value: webhook.DefaultRetries,
			},
			&cli.IntFlag{
				Name:  "notify-batch-size",
				Usage: "Buffer this many records before delivering to the subscriber (0 = deliver immediately)",
				Value: 0,
			},
			&cli.DurationFlag{
				Name:  "notify-flush-interval",
				Usage: "Maximum time buffered records wait before delivery (batched mode only)",
				Value: 5 * time.Second,
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	var nc *notifyChoice
	if kind := c.String("notify"); kind != "" {
		parsed, err := parseNotifyChoice(c, kind)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid notify config: %v", err), 1)
		}
		nc = &parsed
	}

	logger := logx.NewLogger(logx.WithRingSize(c.Int("log-ring-size")))

	if nc != nil {
		sub, err := buildNotifySubscriber(*nc)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to build notify subscriber: %v", err), 1)
		}

		if batchSize := c.Int("notify-batch-size"); batchSize > 0 {
			batched, err := notify.NewBatchSubscriber(sub,
				policy.BufferedConfig{MaxBufferRecords: batchSize},
				c.Duration("notify-flush-interval"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("failed to build batched notify subscriber: %v", err), 1)
			}
			defer func() { _ = batched.Close() }()
			logger.Subscribe(batched)
		} else {
			if closer, ok := sub.(notifyCloser); ok {
				defer func() { _ = closer.Close() }()
			}
			logger.Subscribe(sub)
		}
	}

	catalog := mcpserver.NewCatalog()
	tracker := metrics.NewTracker()
	manager := state.New(c.Int("state-snapshots"))
	inspector := inspect.New()

	server := mcpserver.NewServer(catalog, inspector, tracker, manager, logger)
	transport := mcpserver.NewTransport(os.Stdin, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Serve(ctx, transport); err != nil {
		return cli.Exit(fmt.Sprintf("server error: %v", err), 1)
	}

	return nil
}

func parseNotifyChoice(c *cli.Context, kind string) (notifyChoice, error) {
	nc := notifyChoice{
		kind:    kind,
		url:     c.String("notify-url"),
		channel: c.String("notify-channel"),
		timeout: c.Duration("notify-timeout"),
		retries: c.Int("notify-retries"),
		headers: make(map[string]string),
	}

	if nc.url == "" {
		return nc, fmt.Errorf("--notify-url is required when --notify=%s", kind)
	}
	if nc.retries < 0 {
		return nc, fmt.Errorf("--notify-retries must be >= 0, got %d", nc.retries)
	}

	switch kind {
	case "webhook":
		for _, h := range c.StringSlice("notify-header") {
			k, v, ok := splitHeader(h)
			if !ok {
				return nc, fmt.Errorf("invalid --notify-header %q: expected key=value", h)
			}
			nc.headers[k] = v
		}
	case "redis":
		if len(c.StringSlice("notify-header")) > 0 {
			fmt.Fprintf(os.Stderr, "Warning: --notify-header is ignored for the redis subscriber\n")
		}
	default:
		return nc, fmt.Errorf("unknown notify type: %q (supported: webhook, redis)", kind)
	}

	return nc, nil
}

func splitHeader(h string) (string, string, bool) {
	for i := 0; i < len(h); i++ {
		if h[i] == '=' {
			if i == 0 {
				return "", "", false
			}
			return h[:i], h[i+1:], true
		}
	}
	return "", "", false
}

// buildNotifySubscriber constructs a logx.Subscriber from the parsed choice.
// Errors reported by the subscriber after Handle has returned are logged to
// stderr rather than surfaced, since the logger has no synchronous caller to
// report back to.
func buildNotifySubscriber(nc notifyChoice) (logx.Subscriber, error) {
	onError := func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: notify delivery failed: %v\n", err)
	}

	switch nc.kind {
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     nc.url,
			Headers: nc.headers,
			Timeout: nc.timeout,
			Retries: nc.retries,
		}, webhook.WithErrorHandler(onError))
	case "redis":
		return redis.New(redis.Config{
			URL:     nc.url,
			Channel: nc.channel,
			Timeout: nc.timeout,
			Retries: nc.retries,
		}, redis.WithErrorHandler(onError))
	default:
		return nil, fmt.Errorf("unknown notify type: %q", nc.kind)
	}
}
