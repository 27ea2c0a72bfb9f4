package main

import (
	"redditbot/cmd/redditbot/commands"
	"redditbot/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
