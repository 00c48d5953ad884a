package main

import "github.com/pfrederiksen/grantflow/internal/cli"

func main() {
	cli.Execute()
}
