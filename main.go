package main

import "github.com/polyarb/arb-monitor/cmd"

func main() {
	cmd.Execute()
}
