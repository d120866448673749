package util

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ReadOptimizations is populated by individual OS-specific init()s
var ReadOptimizations []FileHandleOptimization

type FileHandleOptimization struct {
	Name   string
	Action func(
		file *os.File,
		stat os.FileInfo,
	) error
}

// This is a surprisingly cheap and reliable way to emulate a part of unsafe.*
// Use this for various syscalls, not to pull in unsafe and make folks go 😱🙀🤮
func _addressofref(val interface{}) uintptr {
	a, _ := strconv.ParseInt(fmt.Sprintf("%p", val), 0, 64)
	return uintptr(a)
}

func Commify(inVal int) []byte {
	return Commify64(int64(inVal))
}

func Commify64(inVal int64) []byte {
	inStr := strconv.FormatInt(inVal, 10)

	outStr := make([]byte, 0, 20)
	i := 1

	if inVal < 0 {
		outStr = append(outStr, '-')
		i++
	}

	for i <= len(inStr) {
		outStr = append(outStr, inStr[i-1])

		if i < len(inStr) &&
			((len(inStr)-i)%3) == 0 {
			outStr = append(outStr, ',')
		}

		i++
	}

	return outStr
}

func AvailableMapKeys(m interface{}) string {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Map {
		log.Panicf("input type not a map: %v", v)
	}
	avail := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		avail = append(avail, "'"+k.String()+"'")
	}
	sort.Strings(avail)
	return strings.Join(avail, ", ")
}
