package main

import "github.com/tpakis/link-ops-sub001/cmd"

func main() {
	cmd.Execute()
}
