package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// goos is a hook so tests can exercise each platform branch.
var goos = func() string { return runtime.GOOS }

// launchers maps GOOS to the command that hands a URL to the default browser.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser points the default browser at url so the user can approve the
// authorization request.
func OpenBrowser(url string) error {
	launcher, ok := launchers[goos()]
	if !ok {
		return fmt.Errorf("no browser launcher for %s", goos())
	}

	cmd := exec.Command(launcher[0], append(launcher[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	return nil
}
