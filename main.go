package main

import "starsync/cmd"

func main() {
	cmd.Execute()
}
