//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Ingest builds the CLI and ingests excerpt and persona files into the
// knowledge base.
func Ingest() error {
	mg.Deps(Build)
	return runBin("knowledge", "store")
}

// Generate builds the CLI and runs the generation pipeline for every
// request file under requests/.
func Generate() error {
	mg.Deps(Build)
	matches, err := filepath.Glob("requests/*.yaml")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No request files under requests/.")
		return nil
	}
	for _, req := range matches {
		fmt.Printf("Generating %s\n", req)
		if err := runBin("generate", req); err != nil {
			return err
		}
	}
	return nil
}

func runBin(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
