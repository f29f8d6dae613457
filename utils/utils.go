package utils

import (
	"log"
	"unsafe"

	"github.com/jwaldrip/odin/cli"
)

type ArgsOpt struct {
	Prefix     string
	Kmer       int
	NumCPU     int
	Cpuprofile string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.Prefix = c.Flag("p").String()
	if opt.Prefix == "" {
		log.Fatalf("[CheckGlobalArgs] args 'p' not set\n")
	}
	opt.Cpuprofile = c.Flag("cpuprofile").String()

	var ok bool
	opt.Kmer, ok = c.Flag("K").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 'K' : %v set error\n", c.Flag("K").String())
	}
	opt.NumCPU, ok = c.Flag("t").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 't': %v set error\n", c.Flag("t").String())
	}
	return opt, true
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}

func Bytes2String(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}
