package model

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// predictRequest is one sentence queued for the worker process.
type predictRequest struct {
	Words    []string
	Response chan predictResponse
}

// predictResponse carries the worker's answer back to the caller.
type predictResponse struct {
	Tokens []string
	Probs  [][]float64
	Error  error
}

// wireRequest is the JSON line sent to the worker.
type wireRequest struct {
	Words []string `json:"words"`
}

// wireResponse is the JSON line the worker replies with.
type wireResponse struct {
	Tokens []string    `json:"tokens"`
	Probs  [][]float64 `json:"probs"`
	Error  string      `json:"error,omitempty"`
}

// SubprocessPredictor runs predictions through a long-lived worker process
// (typically a Python script holding the fine-tuned model) speaking JSON
// lines over stdin/stdout. Useful when a fold's model has no ONNX export.
type SubprocessPredictor struct {
	queue   chan predictRequest
	done    chan struct{}
	wg      sync.WaitGroup
	process *exec.Cmd
}

// NewSubprocessPredictor starts the worker command with the given arguments.
func NewSubprocessPredictor(command string, args ...string) (*SubprocessPredictor, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start prediction worker: %w", err)
	}

	p := &SubprocessPredictor{
		queue:   make(chan predictRequest, 256),
		done:    make(chan struct{}),
		process: cmd,
	}

	p.wg.Add(1)
	go p.workerLoop(stdin, stdout)

	return p, nil
}

// workerLoop forwards queued requests to the worker process one at a time
// and routes each JSON-line answer back to its caller.
func (p *SubprocessPredictor) workerLoop(stdin io.WriteCloser, stdout io.ReadCloser) {
	defer p.wg.Done()

	stdinWriter := bufio.NewWriter(stdin)
	stdoutReader := bufio.NewScanner(stdout)
	stdoutReader.Buffer(make([]byte, 0, 1<<20), 1<<24)

	for {
		select {
		case <-p.done:
			stdin.Close()
			return
		case req := <-p.queue:
			line, err := json.Marshal(wireRequest{Words: req.Words})
			if err != nil {
				req.Response <- predictResponse{Error: fmt.Errorf("failed to encode request: %w", err)}
				continue
			}

			if _, err := stdinWriter.Write(append(line, '\n')); err != nil {
				req.Response <- predictResponse{Error: fmt.Errorf("failed to write to worker: %w", err)}
				continue
			}
			if err := stdinWriter.Flush(); err != nil {
				req.Response <- predictResponse{Error: fmt.Errorf("failed to flush: %w", err)}
				continue
			}

			if !stdoutReader.Scan() {
				req.Response <- predictResponse{Error: fmt.Errorf("failed to read from worker: %v", stdoutReader.Err())}
				continue
			}

			var resp wireResponse
			if err := json.Unmarshal(stdoutReader.Bytes(), &resp); err != nil {
				req.Response <- predictResponse{Error: fmt.Errorf("failed to parse worker response: %w", err)}
				continue
			}
			if resp.Error != "" {
				req.Response <- predictResponse{Error: fmt.Errorf("worker error: %s", resp.Error)}
				continue
			}
			if len(resp.Tokens) != len(resp.Probs) {
				req.Response <- predictResponse{Error: fmt.Errorf("worker returned %d tokens but %d probability rows", len(resp.Tokens), len(resp.Probs))}
				continue
			}

			req.Response <- predictResponse{Tokens: resp.Tokens, Probs: resp.Probs}
		}
	}
}

// Predict queues one sentence and waits for the worker's answer.
func (p *SubprocessPredictor) Predict(words []string) ([]string, [][]float64, error) {
	respChan := make(chan predictResponse, 1)

	p.queue <- predictRequest{Words: words, Response: respChan}

	resp := <-respChan
	return resp.Tokens, resp.Probs, resp.Error
}

// Close shuts the worker process down gracefully.
func (p *SubprocessPredictor) Close() error {
	close(p.done)
	p.wg.Wait()

	err := p.process.Wait()
	if err != nil && err.Error() != "signal: terminated" {
		return fmt.Errorf("prediction worker error: %w", err)
	}
	return nil
}
