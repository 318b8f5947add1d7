package main

import "marketwatch/internal/cli"

func main() {
	cli.Execute()
}
