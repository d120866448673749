// +build fencer_noSanchecks

package constants

const PerformSanityChecks = false
