package main

import "github.com/SamJeffrey8/helios/diag"

type errString string

func (e errString) Error() string { return string(e) }

// reportErr re-renders err as a one-line diagnostic plus source excerpt
// via the diag package.
func reportErr(err error) error {
	return errString(diag.Render(err))
}
