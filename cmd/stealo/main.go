package main

import "github.com/mcoot/elostealo/internal/cli"

func main() {
	cli.Execute()
}
