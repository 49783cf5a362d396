package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/driver/mock"
)

const (
	nameField = "app:id/name"
	saveBtn   = `//android.widget.Button[@text="Save"]`
	busyBtn   = "app:id/busy"
	offBtn    = "app:id/off"
	missing   = `//*[@text="Nowhere"]`
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newDevice() *mock.Driver {
	return mock.New(mock.Config{
		Start: "form",
		Screens: []mock.Screen{
			{Name: "form", Elements: []mock.Element{
				{Locator: nameField, Value: "Y"},
				{Locator: saveBtn, Next: "saved"},
				{Locator: busyBtn, EnableAfter: 3},
				{Locator: offBtn, Disabled: true},
			}},
			{Name: "saved"},
		},
	})
}

func newProbe(d *mock.Driver) *Probe {
	return New(d, WithTimeout(60*time.Millisecond), WithPollInterval(5*time.Millisecond))
}

func TestNew_Defaults(t *testing.T) {
	p := New(newDevice())
	assert.Equal(t, DefaultTimeout, p.Timeout())
	assert.Equal(t, 15*time.Second, p.Timeout())
	assert.Equal(t, DefaultPollInterval, p.interval)

	p = New(newDevice(), WithTimeout(-1), WithPollInterval(0), WithLogger(nil))
	assert.Equal(t, DefaultTimeout, p.Timeout(), "non-positive timeout is ignored")
	assert.NotNil(t, p.log)
}

func TestExists_Present(t *testing.T) {
	p := newProbe(newDevice())
	assert.True(t, p.Exists(context.Background(), nameField))
	assert.True(t, p.Exists(context.Background(), saveBtn))
}

func TestExists_NeverPresentReturnsFalse(t *testing.T) {
	p := newProbe(newDevice())
	for _, timeout := range []time.Duration{0, time.Millisecond, 20 * time.Millisecond} {
		start := time.Now()
		assert.False(t, p.ExistsWithin(context.Background(), missing, timeout), "timeout %s", timeout)
		assert.Less(t, time.Since(start), timeout+time.Second)
	}
}

func TestExists_PresentButNotClickable(t *testing.T) {
	d := newDevice()
	p := newProbe(d)

	assert.True(t, p.Exists(context.Background(), offBtn))

	err := p.Click(context.Background(), offBtn)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotClickableInTime)
	assert.Empty(t, d.Clicks())
}

func TestExists_SessionErrorsReadAsAbsent(t *testing.T) {
	d := newDevice()
	require.NoError(t, d.Quit())
	p := newProbe(d)

	assert.False(t, p.Exists(context.Background(), nameField))
}

func TestExists_SlowLookupStopsAtTimeout(t *testing.T) {
	d := newDevice()
	d.Config.CallDelay = 2 * time.Second
	p := newProbe(d)

	start := time.Now()
	assert.False(t, p.ExistsWithin(context.Background(), nameField, 100*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, d.FindCount(), "lookup was abandoned")
}

func TestClick_SlowDeviceStopsAtTimeout(t *testing.T) {
	d := newDevice()
	d.Config.CallDelay = 2 * time.Second
	p := newProbe(d)

	start := time.Now()
	err := p.ClickWithin(context.Background(), saveBtn, 100*time.Millisecond)
	assert.ErrorIs(t, err, core.ErrNotClickableInTime)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, d.Clicks())
}

func TestExists_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newProbe(newDevice())

	assert.False(t, p.Exists(ctx, nameField))
}

func TestClick_DeliversClick(t *testing.T) {
	d := newDevice()
	p := newProbe(d)

	require.NoError(t, p.Click(context.Background(), saveBtn))
	assert.Equal(t, []string{saveBtn}, d.Clicks())
	assert.Equal(t, "saved", d.Screen())
}

func TestClick_WaitsForClickable(t *testing.T) {
	d := newDevice()
	p := newProbe(d)

	require.NoError(t, p.Click(context.Background(), busyBtn))
	assert.Equal(t, []string{busyBtn}, d.Clicks())
}

func TestClick_NeverSatisfied(t *testing.T) {
	d := newDevice()
	p := newProbe(d)

	err := p.Click(context.Background(), missing)
	require.Error(t, err)

	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, core.KindInteractionFailed, execErr.Kind)
	assert.Equal(t, "not_clickable_in_time", execErr.Code)
	assert.Equal(t, missing, execErr.Locator)
	assert.Equal(t, "xpath", execErr.Details["strategy"])
	assert.Empty(t, d.Actions(), "no partial side effect")
}

func TestClick_SessionFailureAfterWait(t *testing.T) {
	d := newDevice()
	p := New(&quitOnClick{Driver: d}, WithTimeout(60*time.Millisecond), WithPollInterval(5*time.Millisecond))

	err := p.Click(context.Background(), saveBtn)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionFailure)
}

func TestType_ClearsBeforeTyping(t *testing.T) {
	d := newDevice()
	p := newProbe(d)
	require.Equal(t, "Y", d.Value(nameField))

	require.NoError(t, p.Type(context.Background(), nameField, "X"))
	assert.Equal(t, "X", d.Value(nameField))

	require.NoError(t, p.Type(context.Background(), nameField, "X"))
	assert.Equal(t, "X", d.Value(nameField), "typing twice is idempotent")

	actions := d.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, "clear", actions[0].Kind)
	assert.Equal(t, "type", actions[1].Kind)
}

func TestType_NeverSatisfied(t *testing.T) {
	d := newDevice()
	p := newProbe(d)

	err := p.Type(context.Background(), missing, "secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotPresentInTime)
	assert.NotContains(t, err.Error(), "secret")
	assert.Empty(t, d.Actions())
}

func TestCondition_String(t *testing.T) {
	assert.Equal(t, "present", Present.String())
	assert.Equal(t, "clickable", Clickable.String())
}

// quitOnClick ends the session right before the click is delivered.
type quitOnClick struct {
	*mock.Driver
}

func (q *quitOnClick) ClickElement(ctx context.Context, id string) error {
	_ = q.Driver.Quit()
	return q.Driver.ClickElement(ctx, id)
}
