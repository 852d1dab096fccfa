// Package main is the daily motivation command-line client. It shares the
// storage and quote stack with the HTTP service.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	s := newSession(os.Stdout, os.Stderr)

	err := newRootCmd(s).Execute()

	return errors.Join(err, s.close())
}
