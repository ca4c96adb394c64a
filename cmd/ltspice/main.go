package main

import "github.com/Shiangjun/LTspice-cli/internal/cli"

func main() {
	cli.Execute()
}
