package main

import "lowc/cmd"

func main() {
	cmd.Execute()
}
