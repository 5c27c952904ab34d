package tui

import (
	"testing"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		// Supported: inspect command
		{"inspect_function", true},

		// Supported: stats commands
		{"stats_metrics", true},
		{"stats_state", true},
		{"stats_logs", true},

		// Not supported: list command
		{"list_functions", false},
		{"list_hijacked", false},

		// Not supported: version
		{"version", false},

		// Not supported: serve
		{"serve", false},

		// Not supported: unknown
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()

	if len(views) != 4 {
		t.Errorf("SupportedTUIViews() returned %d views, expected 4", len(views))
	}

	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	err := Run("list_functions", nil)
	if err == nil {
		t.Error("Expected error for unsupported view type")
	}
}
