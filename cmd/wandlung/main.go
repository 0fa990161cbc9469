package main

import "github.com/forPelevin/wandlung/internal/cli"

func main() {
	cli.Main()
}
