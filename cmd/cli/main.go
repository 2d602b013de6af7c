// Command atm is a command-line ATM over the shared account store. Every
// invocation opens the store, logs in, runs one operation and logs out.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], newTerminal(os.Stdin, os.Stdout, os.Stderr)))
}
