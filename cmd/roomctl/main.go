package main

import (
	"github.com/mcoot/gameroom-go/internal/cli"
)

func main() {
	cli.Execute()
}
