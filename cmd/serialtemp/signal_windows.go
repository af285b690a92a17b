//go:build windows

package main

import "os"

// shutdownSignals stop a long-running command such as mcp-server.
var shutdownSignals = []os.Signal{os.Interrupt}
