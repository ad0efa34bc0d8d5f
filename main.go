package main

import (
	"github.com/treadproject/tread/cmd"
)

func main() {
	cmd.MustRun()
}
