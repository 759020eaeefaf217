// Command omw hosts registered functions behind the two interactive
// front ends: an in-process argument-vector REPL and a kernel-link
// server, plus a client for calling a served instance.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "omw: %v\n", err)
		os.Exit(1)
	}
}
