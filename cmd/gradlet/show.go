package main

import (
	"flag"
	"fmt"

	"github.com/gradlet-ml/gradlet/internal/dataset"
	"github.com/gradlet-ml/gradlet/internal/display"
)

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dataDir := fs.String("data-dir", "data/mnist", "Dataset directory")
	split := fs.String("split", "train", "Split to sample from (train or test)")
	index := fs.Int("index", 0, "Sample index")
	pngPath := fs.String("png", "", "Also write the sample as a PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ds, err := dataset.Load(*dataDir, dataset.Split(*split))
	if err != nil {
		return err
	}
	if *index < 0 || *index >= ds.Len() {
		return fmt.Errorf("index %d out of range [0, %d)", *index, ds.Len())
	}

	pixels := ds.Image(*index)
	fmt.Printf("sample %d of %s split, label %d\n\n", *index, *split, ds.Label(*index))
	fmt.Print(display.ASCII(pixels))

	if *pngPath != "" {
		if err := display.SavePNG(pixels, *pngPath); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", *pngPath)
	}
	return nil
}
