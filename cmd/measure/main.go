package main

import "github.com/tracelab/measure/internal/cli"

func main() {
	cli.Execute()
}
