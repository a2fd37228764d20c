//go:build !unix

package sysinfo

import (
	"os"
	"runtime"
)

func readUname() (Uname, error) {
	host, err := os.Hostname()
	return Uname{Sysname: runtime.GOOS, Nodename: host, Machine: runtime.GOARCH}, err
}
