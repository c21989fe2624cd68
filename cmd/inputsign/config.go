package main

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/jessevdk/go-flags"
)

const defaultLogLevel = "info"

// config defines the options shared by every command.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to an INI configuration file"`
	DebugLevel string `short:"d" long:"debuglevel" env:"INPUTSIGN_DEBUGLEVEL" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
}

// signCommand signs one transaction input.
type signCommand struct {
	Index    uint32     `short:"i" long:"index" description:"The ordinal position of the input within the transaction" default:"0"`
	SignType sighashArg `short:"s" long:"sign_type" description:"The signature hash type {all, none, single} optionally combined with anyonecanpay, e.g. all|anyonecanpay" default:"all"`
	Nonce    hexArg     `short:"n" long:"nonce" description:"Hex encoded seed of at least 128 bits for the signing nonce; a deterministic nonce is used when omitted"`
	Raw      bool       `long:"raw" description:"Print the DER signature without the trailing sighash type byte"`

	Args struct {
		PrivateKey    privateKeyArg `positional-arg-name:"EC_PRIVATE_KEY" description:"The private key as 64 hex characters or in wallet import format" required:"yes"`
		PrevoutScript scriptArg     `positional-arg-name:"PREVOUT_SCRIPT" description:"The previous output script as hex or tokens" required:"yes"`
		Transaction   string        `positional-arg-name:"TRANSACTION" description:"The hex encoded transaction; read from STDIN when omitted"`
	} `positional-args:"yes"`
}

// batchCommand signs every job of a file.
type batchCommand struct {
	Format  string `short:"f" long:"format" description:"Job file format" choice:"json" choice:"csv" default:"json"`
	Workers int    `short:"w" long:"workers" description:"Number of parallel workers (0 = one per CPU)" default:"0"`
	Raw     bool   `long:"raw" description:"Print DER signatures without the trailing sighash type byte"`

	Args struct {
		File string `positional-arg-name:"FILE" description:"The job file" required:"yes"`
	} `positional-args:"yes"`
}

// options is the fully parsed command line.
type options struct {
	config
	command string
	sign    signCommand
	batch   batchCommand
}

// newParser returns a parser for opts with the sign and batch commands
// registered.
func newParser(opts *options) (*flags.Parser, error) {
	parser := flags.NewNamedParser("inputsign", flags.HelpFlag)
	if _, err := parser.AddGroup("Application Options", "",
		&opts.config); err != nil {

		return nil, err
	}

	_, err := parser.AddCommand("sign", "Sign a transaction input",
		"Create an endorsement for a transaction input.", &opts.sign)
	if err != nil {
		return nil, err
	}
	_, err = parser.AddCommand("batch", "Sign the inputs listed in a file",
		"Sign every job of a JSON or CSV file in parallel.", &opts.batch)
	if err != nil {
		return nil, err
	}
	return parser, nil
}

// loadConfig parses args on top of an optional configuration file.
//
// The command line is pre-parsed to find the configuration file, the file is
// loaded and the command line is parsed again so it takes precedence.
func loadConfig(args []string) (*options, *flags.Parser, error) {
	preCfg := config{DebugLevel: defaultLogLevel}
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	opts := &options{config: config{DebugLevel: defaultLogLevel}}
	parser, err := newParser(opts)
	if err != nil {
		return nil, nil, err
	}

	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, parser, fmt.Errorf("failed to load config "+
				"file: %w", err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, parser, err
	}
	if parser.Active == nil {
		return nil, parser, fmt.Errorf("a command is required")
	}
	opts.command = parser.Active.Name

	if _, ok := slog.LevelFromString(opts.DebugLevel); !ok {
		return nil, parser, fmt.Errorf("invalid debug level %q",
			opts.DebugLevel)
	}

	return opts, parser, nil
}
