// +build go1.13

package constants

// refuses to compile on toolchains predating the needed error-wrapping verbs
const __SOFTWARE_REQUIRES_GO_VERSION_1_13__ = 42
