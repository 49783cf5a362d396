package appium

const vendorPrefix = "appium:"

// DefaultServerURL is the Appium 1.x style hub endpoint.
const DefaultServerURL = "http://localhost:4723/wd/hub"

// recognizedKeys are Appium options that need the vendor prefix on the wire.
var recognizedKeys = map[string]bool{
	"deviceName":        true,
	"platformVersion":   true,
	"appPackage":        true,
	"appActivity":       true,
	"automationName":    true,
	"newCommandTimeout": true,
	"noReset":           true,
	"fullReset":         true,
	"fastReset":         true,
	"udid":              true,
	"settings":          true,
}

// DefaultCapabilities returns the capabilities for Gmail on an Android emulator.
func DefaultCapabilities() map[string]interface{} {
	return map[string]interface{}{
		"platformName":          "Android",
		"appium:deviceName":     "Android Emulator",
		"appium:appPackage":     "com.google.android.gm",
		"appium:appActivity":    "com.google.android.gm.ConversationListActivityGmail",
		"appium:automationName": "UiAutomator2",
	}
}

// NormalizeCapabilities returns a copy of caps with recognized Appium
// options moved under the "appium:" prefix. An explicitly prefixed key wins
// over its bare form. platformName and unrecognized keys pass through.
func NormalizeCapabilities(caps map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(caps))
	for k, v := range caps {
		if recognizedKeys[k] {
			continue
		}
		out[k] = v
	}
	for k, v := range caps {
		if !recognizedKeys[k] {
			continue
		}
		if _, ok := out[vendorPrefix+k]; ok {
			continue
		}
		out[vendorPrefix+k] = v
	}
	return out
}

// MergeCapabilities overlays caps on base. Both are normalized first so a
// bare key in caps overrides the prefixed key in base.
func MergeCapabilities(base, caps map[string]interface{}) map[string]interface{} {
	out := NormalizeCapabilities(base)
	for k, v := range NormalizeCapabilities(caps) {
		out[k] = v
	}
	return out
}

// AppPackage returns the app package named by caps, or "".
func AppPackage(caps map[string]interface{}) string {
	for _, k := range []string{vendorPrefix + "appPackage", "appPackage", vendorPrefix + "bundleId"} {
		if v, ok := caps[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
