// Package main provides the gradlet CLI: train a digit classifier on
// MNIST, evaluate a checkpoint, and inspect dataset samples.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "version":
		fmt.Printf("gradlet %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gradlet %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("gradlet - train a feed-forward network on MNIST")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  train      Train a model (downloads MNIST if asked)")
	fmt.Println("  eval       Evaluate a checkpoint on the test split")
	fmt.Println("  show       Render a dataset sample in the terminal")
	fmt.Println("  version    Show version")
	fmt.Println()
	fmt.Println("Run 'gradlet <command> -h' for command flags.")
}
