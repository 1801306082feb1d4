package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "marketctl",
		Usage: "Operator tool for the timber marketplace store",
		Commands: []*cli.Command{
			seedCmd,
			suggestionsCmd,
			interestCmd,
			withdrawCmd,
			dealsCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}
