package main

import "github.com/civic881027/ai-ticket-demo/cmd/helpdesk/cmd"

func main() {
	cmd.Execute()
}
