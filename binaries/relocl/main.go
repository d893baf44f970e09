package main

import (
	"log"

	"github.com/cloudtask/relocation/eviction/cli"
)

// A command-line client to the eviction quota service
func main() {
	cl, err := cli.NewSimpleCLIClient()
	if err != nil {
		log.Fatal("Cannot initialize relocation CLI: ", err)
	}
	err = cl.Exec()
	if err != nil {
		log.Fatal("error running relocl ", err)
	}
}
