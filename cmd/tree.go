package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/exprjson"
)

// readTree decodes a tree given inline as JSON, as "-" for stdin, or as a
// file path.
func readTree(arg string, stdin io.Reader, b *expr.Builder) (expr.Node, error) {
	var data []byte
	var err error
	switch {
	case strings.HasPrefix(strings.TrimSpace(arg), "{"):
		data = []byte(arg)
	case arg == "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", arg, err)
	}
	n, err := exprjson.Decode(data, b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", arg, err)
	}
	return n, nil
}

var errStdinTwice = errors.New("--prior and --next cannot both read from stdin")

// readPair reads the prior and next trees with one builder so their ids
// never collide.
func readPair(priorArg, nextArg string, stdin io.Reader, b *expr.Builder) (prior, next expr.Node, err error) {
	if priorArg == "-" && nextArg == "-" {
		return nil, nil, errStdinTwice
	}
	if prior, err = readTree(priorArg, stdin, b); err != nil {
		return nil, nil, err
	}
	if next, err = readTree(nextArg, stdin, b); err != nil {
		return nil, nil, err
	}
	return prior, next, nil
}
