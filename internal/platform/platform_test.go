package platform

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAddressIsStable(t *testing.T) {
	first := ControlAddress("CodePomodoro")
	assert.Equal(t, first, ControlAddress("CodePomodoro"))
	assert.NotEqual(t, first, ControlAddress("SomethingElse"))

	_, port, err := net.SplitHostPort(first)
	require.NoError(t, err)
	assert.NotEmpty(t, port)
}

func TestAcquireAddressIsExclusive(t *testing.T) {
	guard, err := AcquireAddress("127.0.0.1:0")
	require.NoError(t, err)
	defer guard.Release()

	_, err = AcquireAddress(guard.Address())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, guard.Release())
	require.NoError(t, guard.Release())

	again, err := AcquireAddress(guard.Address())
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
	assert.Nil(t, guard.Listener())
}

func TestValidateLaunch(t *testing.T) {
	assert.Error(t, validateLaunch("enable", "", []string{"/bin/app"}))
	assert.Error(t, validateLaunch("enable", "CodePomodoro", nil))
	assert.NoError(t, validateLaunch("enable", "CodePomodoro", []string{"/bin/app", "run"}))
}

func TestSlugAndQuote(t *testing.T) {
	assert.Equal(t, "code-pomodoro", slugName(" Code Pomodoro "))
	assert.Equal(t, "codepomodoro", slugName(""))
	assert.Equal(t, `"/opt/my app/bin"`, quoteArg("/opt/my app/bin"))
	assert.Equal(t, "run", quoteArg("run"))
}
