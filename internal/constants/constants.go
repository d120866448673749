package constants

import (
	"os"
	"strconv"
)

const (
	minGoVersion = __SOFTWARE_REQUIRES_GO_VERSION_1_13__
)

var LongTests bool
var VeryLongTests bool

func init() {
	VeryLongTests = isTruthy("TEST_FENCER_VERY_LONG")
	LongTests = VeryLongTests || isTruthy("TEST_FENCER_LONG")
}

func isTruthy(varname string) bool {
	envStr := os.Getenv(varname)
	if envStr != "" {
		if num, err := strconv.ParseUint(envStr, 10, 64); err != nil || num != 0 {
			return true
		}
	}
	return false
}
