package main

import "github.com/botdash/botdash-cli/cmd"

func main() {
	cmd.Execute()
}
