package main

import "github.com/envcheck/envcheck/internal/cli"

func main() {
	cli.Execute()
}
