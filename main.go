package main

import (
	"os"

	"github.com/vkblast/vkblast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
