package main

import "orcamento/internal/cli"

func main() {
	cli.Execute()
}
