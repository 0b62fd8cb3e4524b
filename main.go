package main

import "go-pianoroll/cmd"

func main() {
	cmd.Execute()
}
