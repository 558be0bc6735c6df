package main

import "github.com/klokapp/klok/internal/cli"

func main() {
	cli.Execute()
}
