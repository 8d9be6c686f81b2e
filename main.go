package main

import "dupfinder/cmd"

func main() {
	cmd.Execute()
}
