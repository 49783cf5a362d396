package main

import "github.com/devicelab-dev/gmail-signin/pkg/cli"

func main() {
	cli.Execute()
}
