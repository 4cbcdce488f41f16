package main

import "github.com/nhle/cloudconsole/internal/cli"

func main() {
	cli.Execute()
}
