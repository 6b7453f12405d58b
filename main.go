package main

import (
	"os"

	"github.com/deskhub/deskhub/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
