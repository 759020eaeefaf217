package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	omw "github.com/alixinne/omw"
)

const historyFile = ".omw_history"

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "call registered functions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
}

func runRepl(cmd *cobra.Command) error {
	cfg, log, err := setup(true)
	if err != nil {
		return err
	}

	s, err := newSession(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	w, err := s.arrayWrapper()
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("omw repl. Type help for the function list, quit to exit.")
	for {
		line, err := ln.Prompt("omw> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help", "?":
			for _, b := range s.bindings {
				fmt.Println("  " + b.Usage)
			}
			continue
		}
		ln.AppendHistory(input)

		name, args, err := parseCall(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			continue
		}

		results, err := w.Invoke(name, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "err: %v\n", err)
			continue
		}
		for _, v := range results {
			fmt.Println(v.String())
		}
	}
}

// parseCall reads a "name(arg, ...)" line. Arguments are booleans,
// quoted strings, integers or reals; a real is anything carrying a
// decimal point or exponent, and an integer literal outside the signed
// range falls back to the unsigned kind.
func parseCall(input string) (string, []omw.Value, error) {
	s := strings.TrimSpace(input)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if !isIdent(s) {
			return "", nil, fmt.Errorf("expected a call of the form name(arg, ...)")
		}
		return s, nil, nil
	}

	name := strings.TrimSpace(s[:open])
	if !isIdent(name) {
		return "", nil, fmt.Errorf("invalid function name %q", name)
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("missing closing parenthesis")
	}

	body := strings.TrimSpace(s[open+1 : len(s)-1])
	if body == "" {
		return name, nil, nil
	}

	toks, err := splitArgs(body)
	if err != nil {
		return "", nil, err
	}
	args := make([]omw.Value, len(toks))
	for i, tok := range toks {
		if args[i], err = parseArg(tok); err != nil {
			return "", nil, err
		}
	}
	return name, args, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// splitArgs cuts the argument list on commas outside string literals.
func splitArgs(body string) ([]string, error) {
	var (
		toks  []string
		start int
		inStr bool
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if inStr {
				i++
			}
		case '"':
			inStr = !inStr
		case ',':
			if !inStr {
				toks = append(toks, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if inStr {
		return nil, fmt.Errorf("unterminated string literal")
	}
	toks = append(toks, strings.TrimSpace(body[start:]))
	return toks, nil
}

func parseArg(tok string) (omw.Value, error) {
	switch {
	case tok == "":
		return omw.Value{}, fmt.Errorf("empty argument")
	case tok == "true" || tok == "True":
		return omw.BoolValue(true), nil
	case tok == "false" || tok == "False":
		return omw.BoolValue(false), nil
	case tok[0] == '"':
		s, err := strconv.Unquote(tok)
		if err != nil {
			return omw.Value{}, fmt.Errorf("invalid string %s: %w", tok, err)
		}
		return omw.StringValue(s), nil
	}

	if !strings.ContainsAny(tok, ".eE") {
		if i, err := strconv.ParseInt(tok, 10, 32); err == nil {
			return omw.IntValue(int32(i)), nil
		}
		if u, err := strconv.ParseUint(tok, 10, 32); err == nil {
			return omw.UintValue(uint32(u)), nil
		}
	}
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return omw.Value{}, fmt.Errorf("invalid argument %q", tok)
	}
	return omw.FloatValue(float32(f)), nil
}
