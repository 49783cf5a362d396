package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_StrategiesMatchLocators(t *testing.T) {
	reg := Default()

	assert.Equal(t, StrategyID, Resolve(reg.Get(WelcomeGotIt)).Strategy)
	assert.Equal(t, StrategyID, Resolve(reg.Get(PermissionDeny)).Strategy)
	assert.Equal(t, StrategyID, Resolve(reg.Get(ConversationList)).Strategy)
	assert.Equal(t, StrategyXPath, Resolve(reg.Get(TakeMeToGmail)).Strategy)
	assert.Equal(t, StrategyXPath, Resolve(reg.Get(PasswordField)).Strategy)
	assert.Equal(t, StrategyXPath, Resolve(reg.Get(InboxLabel)).Strategy)
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	require.Len(t, names, len(Default()))
	for i := 1; i < len(names); i++ {
		assert.Less(t, string(names[i-1]), string(names[i]))
	}
}

func TestRegistry_Merge(t *testing.T) {
	base := Default()
	merged := base.Merge(map[string]string{
		string(ComposeButton): "com.google.android.gm:id/compose_fab",
		string(NextButton):    "",
	})

	assert.Equal(t, "com.google.android.gm:id/compose_fab", merged.Get(ComposeButton))
	assert.Equal(t, base.Get(NextButton), merged.Get(NextButton), "empty override is ignored")
	assert.Equal(t, "com.google.android.gm:id/compose_button", base.Get(ComposeButton), "base is not modified")
}

func TestRegistry_Validate(t *testing.T) {
	missing := Default()
	delete(missing, AcceptButton)
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acceptButton")

	unknown := Default().Merge(map[string]string{"bogus": "//x"})
	err = unknown.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
