package main

import "github.com/emiliopalmerini/growthlab/internal/cli"

func main() {
	cli.Execute()
}
