package main

import "github.com/yourorg/staffdesk/internal/cli"

func main() {
	cli.Execute()
}
