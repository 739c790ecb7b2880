package main

import (
	"flag"
	"log"

	"github.com/organ-match-server/internal/dataset"
	"github.com/organ-match-server/internal/viability"
)

func main() {
	dataPath := flag.String("data", "data/organ_transplant_data.csv", "path to the labeled training CSV")
	outPath := flag.String("out", "models/graft_viability_model.json", "output path for the model artifact")
	version := flag.String("version", "1.0.0", "artifact version label")
	epochs := flag.Int("epochs", 200, "gradient descent epochs")
	learningRate := flag.Float64("lr", 0.1, "gradient descent learning rate")
	flag.Parse()

	rows, labels, err := dataset.LoadTrainingData(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load training data: %v", err)
	}
	log.Printf("Loaded %d training rows from %s", len(rows), *dataPath)

	artifact, err := viability.Fit(rows, labels, viability.FitOptions{
		Version:      *version,
		Epochs:       *epochs,
		LearningRate: *learningRate,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	if err := artifact.Save(*outPath); err != nil {
		log.Fatalf("Failed to save model artifact: %v", err)
	}
	log.Printf("Saved model artifact %s (version %s)", *outPath, artifact.Version)
}
