package remote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaunchCommand(t *testing.T) {
	cmd := launchCommand("cd iosweep && bash ./StartFioTest.sh", RunOptions{})
	require.True(t, strings.HasPrefix(cmd, "nohup sh -c "))
	require.True(t, strings.HasSuffix(cmd, "& echo $!"))

	cmd = launchCommand("cd iosweep && bash ./StartFioTest.sh", RunOptions{Elevate: true})
	require.True(t, strings.HasPrefix(cmd, "sudo nohup sh -c "))
	require.True(t, strings.HasSuffix(cmd, "& echo $!"))
}

// A job launched through sudo runs as root, so its liveness check must also
// go through sudo: plain kill -0 gets EPERM for a non-root login and a live
// job would look finished on the first poll.
func TestLivenessCommandMatchesLaunchPrivilege(t *testing.T) {
	cmd := livenessCommand(JobHandle{PID: "4242", Elevated: true})
	require.Contains(t, cmd, "sudo kill -0 4242")

	cmd = livenessCommand(JobHandle{PID: "4242"})
	require.Contains(t, cmd, "if kill -0 4242")
	require.NotContains(t, cmd, "sudo")
}
