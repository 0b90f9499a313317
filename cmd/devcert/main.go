package main

import "devcert/internal/cli"

func main() {
	cli.Execute()
}
