package main

import "KPlayer/cmd"

func main() {
	cmd.Execute()
}
