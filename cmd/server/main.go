package main

import "github.com/vovakirdan/wirechat-admin/cmd/server/commands"

func main() {
	commands.Execute()
}
