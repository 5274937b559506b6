package main

import "github.com/forPelevin/frankenbite/internal/cli"

func main() {
	cli.Main()
}
