package main

import "github.com/mcoot/autosnake/internal/cli"

func main() {
	cli.Execute()
}
