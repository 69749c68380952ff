package main

import (
	"umami-loadtest/cmd/umami-loadtest/commands"
	"umami-loadtest/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
