package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/mahdiidarabi/inputsign/internal/command"
	"github.com/mahdiidarabi/inputsign/internal/decode"
	"github.com/mahdiidarabi/inputsign/pkg/inputsign"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line in args and returns the exit status.
func run(ctx context.Context, args []string, stdin io.Reader,
	stdout, stderr io.Writer) int {

	opts, parser, err := loadConfig(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintln(stderr, err)
		if parser != nil && !errors.As(err, &flagsErr) {
			parser.WriteHelp(stderr)
		}
		return 1
	}

	initLogging(stderr, opts.DebugLevel)

	var result command.Result
	switch opts.command {
	case "sign":
		result, err = runSign(&opts.sign, stdin, stdout, stderr)
	case "batch":
		result = runBatch(ctx, &opts.batch, stdout, stderr)
	default:
		err = fmt.Errorf("unknown command %q", opts.command)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if result != command.Okay {
		return 1
	}
	return 0
}

func runSign(cmd *signCommand, stdin io.Reader, stdout,
	stderr io.Writer) (command.Result, error) {

	txText := cmd.Args.Transaction
	if txText == "" {
		log.Debugf("Reading transaction from stdin")
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return command.Failure, fmt.Errorf("failed to read "+
				"transaction: %w", err)
		}
		txText = strings.TrimSpace(string(raw))
	}
	tx, err := decode.Transaction(txText)
	if err != nil {
		return command.Failure, err
	}

	invoke := &command.InputSign{
		Index:         int(cmd.Index),
		HashType:      cmd.SignType.SighashType,
		Transaction:   tx,
		PrivateKey:    cmd.Args.PrivateKey.PrivateKey,
		PrevoutScript: cmd.Args.PrevoutScript,
		Nonce:         cmd.Nonce,
		Raw:           cmd.Raw,
	}
	return invoke.Invoke(stdout, stderr), nil
}

func runBatch(ctx context.Context, cmd *batchCommand, stdout,
	stderr io.Writer) command.Result {

	var parser inputsign.JobParser = &inputsign.JSONParser{}
	if cmd.Format == "csv" {
		parser = &inputsign.CSVParser{}
	}

	client := inputsign.NewClient().
		WithParser(parser).
		WithBatchConfig(inputsign.BatchConfig{NumWorkers: cmd.Workers}).
		WithRaw(cmd.Raw)

	invoke := &command.Batch{Source: cmd.Args.File, Client: client}
	return invoke.Invoke(ctx, stdout, stderr)
}
