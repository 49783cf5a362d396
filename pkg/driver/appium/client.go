// Package appium drives an Appium server through the W3C WebDriver protocol.
package appium

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// W3C WebDriver element identifier key (standard constant)
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Client handles HTTP communication with Appium server.
type Client struct {
	serverURL string
	sessionID string
	client    *http.Client
	platform  string // ios, android
}

// NewClient creates a new Appium client.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Minute, // session creation can install the app
		},
	}
}

// Connect creates a new session with the given capabilities.
func (c *Client) Connect(capabilities map[string]interface{}) error {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	resp, err := c.post(context.Background(), "/session", body)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid session response")
	}

	c.sessionID, _ = value["sessionId"].(string)
	if c.sessionID == "" {
		return fmt.Errorf("no session ID in response")
	}

	// Extract platform from capabilities
	if caps, ok := value["capabilities"].(map[string]interface{}); ok {
		if platform, ok := caps["platformName"].(string); ok {
			c.platform = strings.ToLower(platform)
		}
	}

	// Extract waitForIdleTimeout from appium:settings capability if provided
	waitForIdleTimeout := 0
	if settings, ok := capabilities["appium:settings"].(map[string]interface{}); ok {
		if val, ok := settings["waitForIdleTimeout"].(int); ok {
			waitForIdleTimeout = val
		} else if val, ok := settings["waitForIdleTimeout"].(float64); ok {
			waitForIdleTimeout = int(val)
		}
	}
	if waitForIdleTimeout >= 0 && c.platform != "ios" {
		// Best effort: older servers reject unknown settings
		_ = c.SetSettings(map[string]interface{}{
			"waitForIdleTimeout": waitForIdleTimeout,
		})
	}

	return nil
}

// Disconnect closes the session. Safe to call without a session.
func (c *Client) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(context.Background(), c.sessionPath())
	c.sessionID = ""
	return err
}

// SessionID returns the current session ID ("" when disconnected).
func (c *Client) SessionID() string {
	return c.sessionID
}

// Platform returns the platform (ios/android).
func (c *Client) Platform() string {
	return c.platform
}

// Element Operations

// FindElement finds a single element.
func (c *Client) FindElement(ctx context.Context, strategy, value string) (string, error) {
	body := map[string]interface{}{
		"using": strategy,
		"value": value,
	}

	resp, err := c.post(ctx, c.sessionPath()+"/element", body)
	if err != nil {
		return "", err
	}

	elemValue, ok := resp["value"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("element not found")
	}

	// Check for error
	if errMsg, ok := elemValue["error"].(string); ok {
		return "", fmt.Errorf("%s", errMsg)
	}

	id := extractElementID(elemValue)
	if id == "" {
		return "", fmt.Errorf("element not found")
	}
	return id, nil
}

// ClickElement clicks an element using WebDriver standard endpoint.
func (c *Client) ClickElement(ctx context.Context, elementID string) error {
	_, err := c.post(ctx, c.elementPath(elementID)+"/click", nil)
	return err
}

// ClearElement clears an element's text.
func (c *Client) ClearElement(ctx context.Context, elementID string) error {
	_, err := c.post(ctx, c.elementPath(elementID)+"/clear", nil)
	return err
}

// SetElementValue sends text to an element, appending to its content.
func (c *Client) SetElementValue(ctx context.Context, elementID, text string) error {
	chars := make([]string, 0, len(text))
	for _, ch := range text {
		chars = append(chars, string(ch))
	}
	_, err := c.post(ctx, c.elementPath(elementID)+"/value", map[string]interface{}{
		"text":  text,
		"value": chars,
	})
	return err
}

// IsElementDisplayed checks if element is visible.
func (c *Client) IsElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	resp, err := c.get(ctx, c.elementPath(elementID) + "/displayed")
	if err != nil {
		return false, err
	}
	displayed, _ := resp["value"].(bool)
	return displayed, nil
}

// IsElementEnabled checks if element is enabled.
func (c *Client) IsElementEnabled(ctx context.Context, elementID string) (bool, error) {
	resp, err := c.get(ctx, c.elementPath(elementID) + "/enabled")
	if err != nil {
		return false, err
	}
	enabled, _ := resp["value"].(bool)
	return enabled, nil
}

// App Management

// ActivateApp brings an installed app to the foreground.
func (c *Client) ActivateApp(ctx context.Context, appID string) error {
	body := make(map[string]interface{})
	if c.platform == "ios" {
		body["bundleId"] = appID
	} else {
		body["appId"] = appID
	}
	_, err := c.post(ctx, c.sessionPath()+"/appium/device/activate_app", body)
	return err
}

// CurrentActivity returns the foreground Android activity.
func (c *Client) CurrentActivity(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.sessionPath() + "/appium/device/current_activity")
	if err != nil {
		return "", err
	}
	activity, _ := resp["value"].(string)
	return activity, nil
}

// CurrentPackage returns the foreground Android package.
func (c *Client) CurrentPackage(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.sessionPath() + "/appium/device/current_package")
	if err != nil {
		return "", err
	}
	pkg, _ := resp["value"].(string)
	return pkg, nil
}

// Screen Operations

// Screenshot returns a screenshot as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	resp, err := c.get(context.Background(), c.sessionPath()+"/screenshot")
	if err != nil {
		return nil, err
	}
	encoded, ok := resp["value"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid screenshot response")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Source returns the page source XML.
func (c *Client) Source(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, c.sessionPath()+"/source")
	if err != nil {
		return "", err
	}
	source, _ := resp["value"].(string)
	return source, nil
}

// SetSettings updates Appium driver settings.
// For Android UiAutomator2: waitForIdleTimeout, waitForSelectorTimeout
func (c *Client) SetSettings(settings map[string]interface{}) error {
	_, err := c.post(context.Background(), c.sessionPath()+"/appium/settings", map[string]interface{}{
		"settings": settings,
	})
	return err
}

// HTTP Helpers

func (c *Client) sessionPath() string {
	return "/session/" + c.sessionID
}

func (c *Client) elementPath(elementID string) string {
	return c.sessionPath() + "/element/" + elementID
}

func (c *Client) get(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.request(ctx, "GET", path, nil)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (map[string]interface{}, error) {
	if body == nil {
		// W3C requires a JSON body on every POST
		body = map[string]interface{}{}
	}
	return c.request(ctx, "POST", path, body)
}

func (c *Client) delete(ctx context.Context, path string) (map[string]interface{}, error) {
	return c.request(ctx, "DELETE", path, nil)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	url := c.serverURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("nil response from server")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	// Check for WebDriver error
	if errValue, ok := result["value"].(map[string]interface{}); ok {
		if errMsg, ok := errValue["message"].(string); ok {
			if errType, ok := errValue["error"].(string); ok {
				return result, fmt.Errorf("%s: %s", errType, errMsg)
			}
		}
	}

	return result, nil
}

func extractElementID(value map[string]interface{}) string {
	// W3C format
	if id, ok := value[w3cElementKey].(string); ok {
		return id
	}
	// Legacy format
	if id, ok := value["ELEMENT"].(string); ok {
		return id
	}
	return ""
}
