package main

import "flowcheck/internal/cli"

func main() {
	cli.Execute()
}
