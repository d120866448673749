package fencer

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/stream-utils/fencer/internal/fencer/util"

	"github.com/ipfs/go-qringbuf"
)

type statSummary struct {
	EventType string `json:"event"`

	Chunks  int64 `json:"chunks"`
	Payload int64 `json:"payload"`
	SizeMin int   `json:"chunkSizeMin"`
	SizeMax int   `json:"chunkSizeMax"`

	SysStats struct {
		ArgvExpanded []string `json:"argvExpanded"`
		ArgvInitial  []string `json:"argvInitial"`
		qringbuf.Stats
		ElapsedNsecs int64 `json:"elapsedNanoseconds"`

		// getrusage() section
		CpuUserNsecs int64 `json:"cpuUserNanoseconds"`
		CpuSysNsecs  int64 `json:"cpuSystemNanoseconds"`
		MaxRssBytes  int64 `json:"maxMemoryUsed"`
		MinFlt       int64 `json:"cacheMinorFaults"`
		MajFlt       int64 `json:"cacheMajorFaults"`
		BioRead      int64 `json:"blockIoReads,omitempty"`
		BioWrite     int64 `json:"blockIoWrites,omitempty"`
		Sigs         int64 `json:"signalsReceived,omitempty"`
		CtxSwYield   int64 `json:"contextSwitchYields"`
		CtxSwForced  int64 `json:"contextSwitchForced"`

		// for context
		PageSize  int    `json:"pageSize"`
		NumCPU    int    `json:"cpuCount"`
		GoVersion string `json:"goVersion"`
	} `json:"sys"`
}

func (fnc *Fencer) OutputSummary() {

	// no stats emitters - nowhere to output
	if fnc.cfg.emitters[emStatsText] == nil && fnc.cfg.emitters[emStatsJsonl] == nil {
		return
	}

	smr := &fnc.statSummary

	if statsJsonlOut := fnc.cfg.emitters[emStatsJsonl]; statsJsonlOut != nil {
		// emit the JSON last, so that piping to e.g. `jq` works nicer
		defer func() {
			jsonl, err := json.Marshal(smr)
			if err != nil {
				log.Fatalf("Encoding stats-jsonl failed: %s", err)
			}

			if _, err := fmt.Fprintf(statsJsonlOut, "%s\n", jsonl); err != nil {
				log.Fatalf("Emitting '%s' failed: %s", emStatsJsonl, err)
			}
		}()
	}

	statsTextOut := fnc.cfg.emitters[emStatsText]
	if statsTextOut == nil {
		return
	}

	writeTextOutf := func(f string, args ...interface{}) {
		if _, err := fmt.Fprintf(statsTextOut, f, args...); err != nil {
			log.Fatalf("Emitting '%s' failed: %s", emStatsText, err)
		}
	}

	writeTextOutf(
		"\nChunking took %0.2f seconds using %0.2f vCPU and %0.2f MiB peak memory"+
			"\nPerforming %s system reads using %0.2f vCPU at about %0.2f MiB/s"+
			"\nIngesting payload of:%17s bytes\n\n",

		float64(smr.SysStats.ElapsedNsecs)/
			1000000000,

		float64(smr.SysStats.CpuUserNsecs)/
			float64(smr.SysStats.ElapsedNsecs),

		float64(smr.SysStats.MaxRssBytes)/
			(1024*1024),

		util.Commify64(smr.SysStats.ReadCalls),

		float64(smr.SysStats.CpuSysNsecs)/
			float64(smr.SysStats.ElapsedNsecs),

		(float64(smr.Payload)/(1024*1024))/
			(float64(smr.SysStats.ElapsedNsecs)/1000000000),

		util.Commify64(smr.Payload),
	)

	if smr.Chunks > 0 {
		writeTextOutf(
			"Cut a grand-total of:%17s chunks sized between %s and %s bytes\n\n",
			util.Commify64(smr.Chunks),
			util.Commify(smr.SizeMin),
			util.Commify(smr.SizeMax),
		)
	}
}
