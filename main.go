package main

import "github.com/username/flatorders/cmd"

func main() {
	cmd.Execute()
}
