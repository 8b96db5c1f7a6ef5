package main

import "github.com/wenzapen/trowel/cmd"

func main() {
	cmd.Execute()
}
