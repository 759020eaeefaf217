package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	omw "github.com/alixinne/omw"
	"github.com/alixinne/omw/link"
	"github.com/alixinne/omw/linkhost"
)

func newCallCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "call <function> [arg...]",
		Short: "call one function on a serving omw instance",
		Long: `Call dials a serving omw instance, sends one call packet and prints
the answer. The dispatch slot is resolved from this side's function
table, so the client must run with the same configuration as the
server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, addr, args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:7170", "address of the serving instance")
	return cmd
}

func runCall(cmd *cobra.Command, addr, name string, argToks []string) error {
	cfg, log, err := setup(true)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	slot, ok := s.Slot(name)
	if !ok {
		return fmt.Errorf("function %s is not registered", name)
	}

	args := make([]omw.Value, len(argToks))
	for i, tok := range argToks {
		if args[i], err = parseArg(tok); err != nil {
			return err
		}
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client := linkhost.NewClient(link.NewConn(conn),
		linkhost.WithClientLogger(log),
		linkhost.OnMessage(func(ns, tag, text string) {
			fmt.Fprintf(os.Stderr, "%s::%s: %s\n", ns, tag, text)
		}))

	v, err := client.Call(int32(slot), args...)
	if err != nil {
		return err
	}
	fmt.Println(v.String())
	return nil
}
