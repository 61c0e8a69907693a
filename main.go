package main

import "github.com/oddstream/oddstream-agent/cmd"

func main() {
	cmd.Execute()
}
