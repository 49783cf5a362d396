package locator

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		locator  string
		strategy Strategy
	}{
		{"resource id", "com.google.android.gm:id/welcome_tour_got_it", StrategyID},
		{"any element by text", `//*[@text="TAKE ME TO GMAIL"]`, StrategyXPath},
		{"typed element", `//android.widget.Button[@text="Next"]`, StrategyXPath},
		{"marker mid-string", `hierarchy//node`, StrategyXPath},
		{"single slash", "com.android.permissioncontroller:id/permission_deny_button", StrategyID},
		{"empty", "", StrategyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.locator)
			assert.Equal(t, tt.strategy, got.Strategy)
			assert.Equal(t, tt.locator, got.Value)
		})
	}
}

func TestResolved_String(t *testing.T) {
	assert.Equal(t, "id=foo", Resolve("foo").String())
	assert.Equal(t, "xpath=//a", Resolve("//a").String())
}

func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("locators containing the marker resolve to xpath", prop.ForAll(
		func(prefix, suffix string) bool {
			loc := prefix + structuralMarker + suffix
			return Resolve(loc).Strategy == StrategyXPath
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("locators without the marker resolve to id", prop.ForAll(
		func(s string) bool {
			loc := strings.ReplaceAll(s, structuralMarker, "/")
			if strings.Contains(loc, structuralMarker) {
				return true
			}
			return Resolve(loc).Strategy == StrategyID
		},
		gen.AnyString(),
	))

	properties.Property("resolve is deterministic and preserves the value", prop.ForAll(
		func(s string) bool {
			a, b := Resolve(s), Resolve(s)
			return a == b && a.Value == s
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
