package main

import (
	"context"

	"taskmaster/app/cli"
)

func main() {
	cli.Execute(context.Background())
}
