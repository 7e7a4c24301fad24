//go:build tools

// Package roomchat declares tool dependencies so that `go generate` can run
// mockgen from a fresh checkout.
package roomchat

import (
	_ "go.uber.org/mock/mockgen"
)
