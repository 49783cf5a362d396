package appium

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeCapabilities(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
		want map[string]interface{}
	}{
		{
			name: "bare keys are prefixed",
			in: map[string]interface{}{
				"platformName": "Android",
				"deviceName":   "Pixel 8",
				"noReset":      true,
			},
			want: map[string]interface{}{
				"platformName":      "Android",
				"appium:deviceName": "Pixel 8",
				"appium:noReset":    true,
			},
		},
		{
			name: "prefixed key wins over bare key",
			in: map[string]interface{}{
				"appPackage":        "com.example.bare",
				"appium:appPackage": "com.google.android.gm",
			},
			want: map[string]interface{}{
				"appium:appPackage": "com.google.android.gm",
			},
		},
		{
			name: "unknown keys pass through",
			in: map[string]interface{}{
				"custom:flag": "x",
				"language":    "en",
			},
			want: map[string]interface{}{
				"custom:flag": "x",
				"language":    "en",
			},
		},
		{
			name: "nil input",
			in:   nil,
			want: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCapabilities(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeCapabilities() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeCapabilitiesDoesNotMutateInput(t *testing.T) {
	in := map[string]interface{}{"udid": "emulator-5554"}
	_ = NormalizeCapabilities(in)
	if _, ok := in["appium:udid"]; ok {
		t.Error("input map was modified")
	}
	if in["udid"] != "emulator-5554" {
		t.Error("input map lost its key")
	}
}

func TestMergeCapabilities(t *testing.T) {
	got := MergeCapabilities(DefaultCapabilities(), map[string]interface{}{
		"deviceName": "Pixel 8",
		"udid":       "emulator-5556",
	})

	want := map[string]interface{}{
		"platformName":          "Android",
		"appium:deviceName":     "Pixel 8",
		"appium:appPackage":     "com.google.android.gm",
		"appium:appActivity":    "com.google.android.gm.ConversationListActivityGmail",
		"appium:automationName": "UiAutomator2",
		"appium:udid":           "emulator-5556",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeCapabilities() mismatch (-want +got):\n%s", diff)
	}
}

func TestAppPackage(t *testing.T) {
	tests := []struct {
		caps map[string]interface{}
		want string
	}{
		{DefaultCapabilities(), "com.google.android.gm"},
		{map[string]interface{}{"appPackage": "com.bare"}, "com.bare"},
		{map[string]interface{}{"appium:bundleId": "com.google.Gmail"}, "com.google.Gmail"},
		{map[string]interface{}{"appium:appPackage": ""}, ""},
		{map[string]interface{}{}, ""},
	}
	for _, tt := range tests {
		if got := AppPackage(tt.caps); got != tt.want {
			t.Errorf("AppPackage(%v) = %q, want %q", tt.caps, got, tt.want)
		}
	}
}
