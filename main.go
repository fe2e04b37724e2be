package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/ardanlabs/ffi-declgen/config"
	"github.com/ardanlabs/ffi-declgen/generator"
	"github.com/ardanlabs/ffi-declgen/parser"
	"github.com/ardanlabs/ffi-declgen/translate"

	_ "github.com/tliron/commonlog/simple"
)

// cflagsEnv holds extra whitespace-separated parser flags.
const cflagsEnv = "DECLGEN_CFLAGS"

func main() {
	headerPath := flag.String("header", "", "Path to C header file")
	outputPath := flag.String("output", "", "Output file (default stdout)")
	configPath := flag.String("config", "", "Path to declgen.toml (default ./declgen.toml if present)")
	verbose := flag.Int("verbose", 0, "Log verbosity")
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	if *headerPath == "" {
		fmt.Fprintln(os.Stderr, "error: -header flag is required")
		flag.Usage()
		os.Exit(1)
	}

	var flags []string

	cfgFile := *configPath
	if cfgFile == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			cfgFile = config.DefaultFile
		}
	}
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		flags = append(flags, cfg.Parser.Flags...)
		if *outputPath == "" {
			*outputPath = cfg.Output.Path
		}
	}

	if env := os.Getenv(cflagsEnv); env != "" {
		flags = append(flags, strings.Fields(env)...)
	}

	headerData, err := os.ReadFile(*headerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading header: %v\n", err)
		os.Exit(1)
	}

	tu, err := parser.Parse(*headerPath, string(headerData), flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing header: %v\n", err)
		os.Exit(1)
	}

	// A header that does not parse cleanly is never translated best-effort.
	if diags := tu.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d)
		}
		os.Exit(1)
	}

	decls, err := translate.NewCollector().Collect(tu)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error translating header: %v\n", err)
		os.Exit(1)
	}

	out := generator.New(decls).Generate()

	if *outputPath == "" {
		fmt.Print(out)
		return
	}
	if err := os.WriteFile(*outputPath, []byte(out), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *outputPath, err)
		os.Exit(1)
	}
}
