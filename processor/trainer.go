package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strconv"
)

// TrainResult is the JSON-line completion record the external fine-tuning
// command prints when a fold's model is ready.
type TrainResult struct {
	Fold      int    `json:"fold"`
	ModelPath string `json:"model_path"`
	Epochs    int    `json:"epochs"`
}

// RunTraining invokes the external fine-tuning command for one fold and
// returns its completion record. The command receives the fold index, the
// training file (every sentence outside the heldout fold) and the directory
// to write the model into; it reports completion as a JSON line on stdout.
func RunTraining(command string, fold int, trainPath, modelDir string) (*TrainResult, error) {
	log.Printf("  Training fold %d model...", fold)

	cmd := exec.Command(command,
		"--fold", strconv.Itoa(fold),
		"--train-file", trainPath,
		"--output-dir", modelDir,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start trainer: %w", err)
	}

	var result *TrainResult
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var r TrainResult
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			log.Printf("    %s", line)
			continue
		}
		result = &r
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading trainer output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("training failed for fold %d: %w", fold, err)
	}
	if result == nil {
		return nil, fmt.Errorf("trainer for fold %d produced no completion record", fold)
	}

	log.Printf("  Completed fold %d after %d epoch(s): %s", fold, result.Epochs, result.ModelPath)
	return result, nil
}
