package main

import (
	"fmt"
	"log"
	"os"

	"github.com/stream-utils/fencer/internal/fencer"
	"github.com/stream-utils/fencer/internal/fencer/util"
)

func main() {

	inStat, statErr := os.Stdin.Stat()
	if statErr != nil {
		log.Fatalf("unexpected error stat()ing stdIN: %s", statErr)
	}

	// Parse CLI and initialize everything
	// On error it will log.Fatal() on its own
	fnc := fencer.NewFromArgv(os.Args)

	if 0 != (inStat.Mode() & os.ModeCharDevice) {
		// do not try to optimize a TTY
		fmt.Fprint(
			os.Stderr,
			"------\nYou seem to be feeding data straight from a terminal, an odd choice...\nNevertheless will proceed to read until EOF ( Ctrl+D )\n------\n",
		)
	} else {
		for _, opt := range util.ReadOptimizations {
			if err := opt.Action(os.Stdin, inStat); err != nil && err != os.ErrInvalid {
				log.Printf("Failed to apply read optimization hint '%s' to stdIN: %s\n", opt.Name, err)
			}
		}
	}

	processErr := fnc.ProcessReader(os.Stdin)
	fnc.Destroy()
	if processErr != nil {
		log.Fatalf("Unexpected error processing STDIN: %s", processErr)
	}

	fnc.OutputSummary()
}
