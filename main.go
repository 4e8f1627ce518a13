package main

import "github.com/will-rowe/cdbgstream/cmd"

func main() {
	cmd.Execute()
}
