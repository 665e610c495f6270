package main

import (
	"context"
	"os"

	"github.com/frosty865/VOFC-Engine-sub003/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
