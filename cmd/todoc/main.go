package main

import (
	"fmt"
	"os"

	"github.com/muesli/coral"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	var dbpath string

	c := &coral.Command{
		Use:     "todoc",
		Short:   "Interactive todo list console",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    coral.NoArgs,
		RunE: func(_ *coral.Command, _ []string) error {
			return runConsole(dbpath)
		},
	}
	c.Flags().StringVarP(&dbpath, "database", "d", "todod.db", "Database file")

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
