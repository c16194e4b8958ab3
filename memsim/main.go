// Package main is the entry point of memsim.
package main

import "github.com/sarchlab/memsim/memsim/cmd"

func main() {
	cmd.Execute()
}
