package fencer

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/stream-utils/fencer/chunker"
	"github.com/stream-utils/fencer/internal/fencer/hasher"
	"github.com/stream-utils/fencer/internal/fencer/matcher"
	"github.com/stream-utils/fencer/internal/fencer/util"

	getopt "github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

type config struct {
	optSet *getopt.Set

	// where to output
	emitters emissionTargets

	//
	// Bulk of CLI options definition starts here, the rest further down in initArgvParser()
	//

	Help bool `getopt:"-h --help Display help"`

	Fence string `getopt:"--fence=regex The pattern to use as the chunk separator. Always required"`
	Match string `getopt:"--match=disposition What to do with the separator bytes themselves: one of 'drop', 'append' or 'prepend'. Default:"`

	Decompress string `getopt:"--decompress=format Transparently decompress the input before chunking: one of 'none', 'zstd' or 'xz'. Default:"`

	RingBufferSize     int `getopt:"--ring-buffer-size=bytes        The size of the quantized ring buffer used for ingestion. Default:"`
	RingBufferSectSize int `getopt:"--ring-buffer-sync-size=bytes   (EXPERT SETTING) The size of each buffer synchronization sector. Default:"` // option vaguely named 'sync' to not confuse users
	RingBufferMinRead  int `getopt:"--ring-buffer-min-sysread=bytes (EXPERT SETTING) Perform next read(2) only when the specified amount of free space is available in the buffer. Default:"`

	hashFunc string // hash function for chunk digests: option/helptext in initArgvParser()

	emittersStdErr []string // Emitter spec: option/helptext in initArgvParser()
	emittersStdOut []string // Emitter spec: option/helptext in initArgvParser()
}

type emissionTargets map[string]io.Writer

const (
	emNone        = "none"
	emStatsText   = "stats-text"
	emStatsJsonl  = "stats-jsonl"
	emChunksRaw   = "chunks-raw"
	emChunksJsonl = "chunks-jsonl"
)

const (
	decompressNone = "none"
	decompressZstd = "zstd"
	decompressXz   = "xz"
)

// where the CLI initial error messages go
var argParseErrOut = os.Stderr

func NewFromArgv(argv []string) (fnc *Fencer) {

	fnc = &Fencer{
		cfg: config{
			Match:      "drop",
			Decompress: decompressNone,
			hashFunc:   "none",

			RingBufferSize:     24 * 1024 * 1024,
			RingBufferMinRead:  256 * 1024,
			RingBufferSectSize: 64 * 1024,

			emittersStdOut: []string{emChunksRaw},
			emittersStdErr: []string{emStatsText},

			// not defaults but rather the list of known/configured emitters
			emitters: emissionTargets{
				emNone:        nil,
				emStatsText:   nil,
				emStatsJsonl:  nil,
				emChunksRaw:   nil,
				emChunksJsonl: nil,
			},
		},
	}

	// init some constants
	{
		s := &fnc.statSummary
		s.EventType = "summary"

		s.SysStats.ArgvInitial = make([]string, len(argv)-1)
		copy(s.SysStats.ArgvInitial, argv[1:])

		s.SysStats.NumCPU = runtime.NumCPU()
		s.SysStats.PageSize = os.Getpagesize()
		s.SysStats.GoVersion = runtime.Version()
	}

	cfg := &fnc.cfg
	cfg.initArgvParser()

	// accumulator for multiple errors, to present to the user all at once
	var argParseErrs []string
	if err := cfg.optSet.Getopt(argv, nil); err != nil {
		argParseErrs = append(argParseErrs, err.Error())
	}

	if cfg.Help {
		cfg.printUsage()
		os.Exit(0)
	}

	if cfg.Fence == "" {
		argParseErrs = append(argParseErrs, "You must supply a separator pattern via --fence")
	} else if _, err := matcher.Compile(cfg.Fence); err != nil {
		argParseErrs = append(argParseErrs, fmt.Sprintf(
			"compilation of --fence pattern\n%s\n\tfailed: %s",
			cfg.Fence,
			err,
		))
	}

	var dispoErr error
	if fnc.dispo, dispoErr = chunker.ParseMatchDisposition(cfg.Match); dispoErr != nil {
		argParseErrs = append(argParseErrs, dispoErr.Error())
	}

	switch cfg.Decompress {
	case decompressNone, decompressZstd, decompressXz:
	default:
		argParseErrs = append(argParseErrs, fmt.Sprintf(
			"invalid value '%s' for --decompress: must be one of 'none', 'zstd' or 'xz'",
			cfg.Decompress,
		))
	}

	if maker, exists := hasher.AvailableHashers[cfg.hashFunc]; !exists {
		argParseErrs = append(argParseErrs, fmt.Sprintf(
			"invalid hash function '%s' requested via --hash. Available hash names are %s",
			cfg.hashFunc,
			hasher.AvailableNames(),
		))
	} else {
		fnc.digestMaker = maker
	}

	if cfg.RingBufferSize <= 2*cfg.RingBufferMinRead {
		argParseErrs = append(argParseErrs, "the value of --ring-buffer-size must exceed twice the --ring-buffer-min-sysread amount")
	}

	argParseErrs = append(argParseErrs, fnc.setupEmitters()...)

	if len(argParseErrs) != 0 {
		fmt.Fprint(argParseErrOut, "\nFatal error parsing arguments:\n\n")
		cfg.printUsage()

		sort.Strings(argParseErrs)
		fmt.Fprintf(
			argParseErrOut,
			"Fatal error parsing arguments:\n\t%s\n",
			strings.Join(argParseErrs, "\n\t"),
		)
		os.Exit(1)
	}

	// Opts check out - take a snapshot of what we ended up with
	cfg.optSet.VisitAll(func(o getopt.Option) {
		switch o.LongName() {
		case "help":
			// do nothing for these
		default:
			fnc.statSummary.SysStats.ArgvExpanded = append(
				fnc.statSummary.SysStats.ArgvExpanded, fmt.Sprintf(`--%s=%s`,
					o.LongName(),
					o.Value().String(),
				),
			)
		}
	})
	sort.Strings(fnc.statSummary.SysStats.ArgvExpanded)

	return
}

func (cfg *config) printUsage() {
	cfg.optSet.PrintUsage(argParseErrOut)
	fmt.Fprint(argParseErrOut, "\n")
}

func (cfg *config) initArgvParser() {
	// The default documented way of using pborman/options is to muck with globals
	// Operate over objects instead, allowing us to re-parse argv multiple times
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("option set registration failed: %s", err)
	}
	cfg.optSet = o

	// program does not take freeform args
	// need to override this for sensible help render
	o.SetParameters("")

	// Several options have the help-text assembled programmatically
	o.FlagLong(&cfg.hashFunc, "hash", 0,
		"Emit a per-chunk content digest (only visible via the chunks-jsonl emitter), one of: "+hasher.AvailableNames(),
		"algname",
	)
	o.FlagLong(&cfg.emittersStdErr, "emit-stderr", 0, fmt.Sprintf(
		"One or more emitters to activate on stdERR. Available emitters are %s. Default: ",
		util.AvailableMapKeys(cfg.emitters),
	), "commaSepEmitters")
	o.FlagLong(&cfg.emittersStdOut, "emit-stdout", 0,
		"One or more emitters to activate on stdOUT. Available emitters same as above. Default: ",
		"commaSepEmitters",
	)
}

func (fnc *Fencer) setupEmitters() (argErrs []string) {

	activeStderr := make(map[string]bool, len(fnc.cfg.emittersStdErr))
	for _, s := range fnc.cfg.emittersStdErr {
		activeStderr[s] = true
		if val, exists := fnc.cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Sprintf("invalid emitter '%s' specified for --emit-stderr. Available emitters are: %s",
				s,
				util.AvailableMapKeys(fnc.cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Sprintf("Emitter '%s' specified more than once", s))
		} else {
			fnc.cfg.emitters[s] = os.Stderr
		}
	}
	activeStdout := make(map[string]bool, len(fnc.cfg.emittersStdOut))
	for _, s := range fnc.cfg.emittersStdOut {
		activeStdout[s] = true
		if val, exists := fnc.cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Sprintf("invalid emitter '%s' specified for --emit-stdout. Available emitters are: %s",
				s,
				util.AvailableMapKeys(fnc.cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Sprintf("Emitter '%s' specified more than once", s))
		} else {
			fnc.cfg.emitters[s] = os.Stdout
		}
	}

	for _, exclusiveEmitter := range []string{
		emNone,
		emStatsText,
		emChunksRaw,
	} {
		if activeStderr[exclusiveEmitter] && len(activeStderr) > 1 {
			argErrs = append(argErrs, fmt.Sprintf(
				"When specified, emitter '%s' must be the sole argument to --emit-stderr",
				exclusiveEmitter,
			))
		}
		if activeStdout[exclusiveEmitter] && len(activeStdout) > 1 {
			argErrs = append(argErrs, fmt.Sprintf(
				"When specified, emitter '%s' must be the sole argument to --emit-stdout",
				exclusiveEmitter,
			))
		}
	}

	return
}
