package main

import "ccexport/cmd"

func main() {
	cmd.Execute()
}
