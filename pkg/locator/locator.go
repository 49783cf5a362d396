// Package locator decides how a locator string is looked up on the device
// and holds the named locators the login flow interacts with.
package locator

import "strings"

// Strategy is a W3C/Appium element lookup strategy.
type Strategy string

const (
	// StrategyXPath addresses elements by a structural path query.
	StrategyXPath Strategy = "xpath"
	// StrategyID addresses elements by resource identifier.
	StrategyID Strategy = "id"
)

// structuralMarker marks a locator as an XPath query.
const structuralMarker = "//"

// Resolved is a locator paired with the strategy that finds it.
type Resolved struct {
	Strategy Strategy
	Value    string
}

// Resolve picks the lookup strategy for a locator. The value is passed
// through unchanged.
func Resolve(locator string) Resolved {
	if strings.Contains(locator, structuralMarker) {
		return Resolved{Strategy: StrategyXPath, Value: locator}
	}
	return Resolved{Strategy: StrategyID, Value: locator}
}

// String returns "strategy=value".
func (r Resolved) String() string {
	return string(r.Strategy) + "=" + r.Value
}
