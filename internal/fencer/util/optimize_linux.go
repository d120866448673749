package util

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {

	// Raise the size of a passed-in pipe, trying smaller and smaller
	// powers of 2 starting from 32MiB. Entirely opportunistic: how far
	// we get depends on system tuning, so errors are not reported.
	// Background: https://github.com/afborchert/pipebuf
	ReadOptimizations = append(ReadOptimizations, FileHandleOptimization{
		"F_SETPIPE_SZ",
		func(file *os.File, stat os.FileInfo) (err error) {
			if 0 == (stat.Mode() & os.ModeNamedPipe) {
				return os.ErrInvalid
			}

			for pipeSize := 32 * 1024 * 1024; pipeSize > 512; pipeSize /= 2 {
				if _, err = unix.FcntlInt(file.Fd(), unix.F_SETPIPE_SZ, pipeSize); err == nil {
					return
				}
			}

			return
		},
	})

	// When fed a regular file (shell redirect), hint the kernel we will
	// read it start to finish.
	ReadOptimizations = append(ReadOptimizations, FileHandleOptimization{
		"POSIX_FADV_SEQUENTIAL",
		func(file *os.File, stat os.FileInfo) error {
			if !stat.Mode().IsRegular() {
				return os.ErrInvalid
			}
			return unix.Fadvise(int(file.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
		},
	})

}
