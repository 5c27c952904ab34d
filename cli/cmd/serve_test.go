package cmd

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/notify"
	"github.com/kordless/mystic/policy"
)

func newNotifyContext(t *testing.T, args map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("serve", flag.ContinueOnError)
	set.String("notify-url", "", "")
	set.String("notify-channel", "", "")
	set.Duration("notify-timeout", 0, "")
	set.Int("notify-retries", 3, "")

	for k, v := range args {
		if err := set.Set(k, v); err != nil {
			t.Fatalf("set %s=%s: %v", k, v, err)
		}
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestParseNotifyChoice_RequiresURL(t *testing.T) {
	c := newNotifyContext(t, nil)
	if _, err := parseNotifyChoice(c, "webhook"); err == nil {
		t.Fatal("expected error for missing --notify-url")
	}
}

func TestParseNotifyChoice_RejectsUnknownKind(t *testing.T) {
	c := newNotifyContext(t, map[string]string{"notify-url": "https://example.com"})
	if _, err := parseNotifyChoice(c, "carrier-pigeon"); err == nil {
		t.Fatal("expected error for unknown notify kind")
	}
}

func TestParseNotifyChoice_RejectsNegativeRetries(t *testing.T) {
	c := newNotifyContext(t, map[string]string{
		"notify-url":     "https://example.com",
		"notify-retries": "-1",
	})
	if _, err := parseNotifyChoice(c, "webhook"); err == nil {
		t.Fatal("expected error for negative retries")
	}
}

func TestParseNotifyChoice_WebhookAcceptsHeaders(t *testing.T) {
	c := newNotifyContext(t, map[string]string{"notify-url": "https://example.com"})
	nc, err := parseNotifyChoice(c, "webhook")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nc.kind != "webhook" {
		t.Errorf("kind = %q, want webhook", nc.kind)
	}
}

func TestSplitHeader(t *testing.T) {
	tests := []struct {
		in      string
		wantKey string
		wantVal string
		wantOK  bool
	}{
		{"X-Foo=bar", "X-Foo", "bar", true},
		{"X-Foo=bar=baz", "X-Foo", "bar=baz", true},
		{"noequals", "", "", false},
		{"=value", "", "", false},
	}

	for _, tt := range tests {
		k, v, ok := splitHeader(tt.in)
		if ok != tt.wantOK || k != tt.wantKey || v != tt.wantVal {
			t.Errorf("splitHeader(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, k, v, ok, tt.wantKey, tt.wantVal, tt.wantOK)
		}
	}
}

func TestBuildNotifySubscriber_Webhook(t *testing.T) {
	sub, err := buildNotifySubscriber(notifyChoice{
		kind:    "webhook",
		url:     "https://example.com/hook",
		timeout: 0,
		retries: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Name() != "notify-webhook" {
		t.Errorf("Name() = %q, want notify-webhook", sub.Name())
	}
	if closer, ok := sub.(notifyCloser); ok {
		_ = closer.Close()
	} else {
		t.Error("expected webhook subscriber to implement notifyCloser")
	}
}

func TestBuildNotifySubscriber_RejectsUnknownKind(t *testing.T) {
	if _, err := buildNotifySubscriber(notifyChoice{kind: "unknown", url: "x"}); err == nil {
		t.Fatal("expected error for unknown notify kind")
	}
}

func TestBuildNotifySubscriber_BatchWiring(t *testing.T) {
	sub, err := buildNotifySubscriber(notifyChoice{kind: "webhook", url: "https://example.com/hook"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	batched, err := notify.NewBatchSubscriber(sub, policy.BufferedConfig{MaxBufferRecords: 10}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error wrapping subscriber for batching: %v", err)
	}
	defer batched.Close()

	if batched.Name() != "notify-webhook" {
		t.Errorf("Name() = %q, want notify-webhook", batched.Name())
	}
}
