package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// SVMClassifier implements FormClassifier using a Python subprocess that
// hosts the trained per-exercise SVM models. Requests and responses are
// exchanged as one JSON line each.
type SVMClassifier struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewSVMClassifier creates a new SVM form classifier.
// The Python process is started lazily on first classification.
func NewSVMClassifier() (*SVMClassifier, error) {
	if findSVMScript() == "" {
		return nil, fmt.Errorf("svm_service.py not found")
	}
	return &SVMClassifier{}, nil
}

type svmRequest struct {
	Exercise string    `json:"exercise"`
	Angles   []float64 `json:"angles"`
}

type svmResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Classify sends the angle vector to the SVM service and returns its verdict.
func (c *SVMClassifier) Classify(exercise Exercise, angles []float64) (*Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureStarted(); err != nil {
		return nil, err
	}

	req, err := json.Marshal(svmRequest{Exercise: exercise.String(), Angles: angles})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if _, err := c.stdin.Write(append(req, '\n')); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	line, err := c.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp svmResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("svm service: %s", resp.Error)
	}

	return &Classification{Label: resp.Label, Confidence: resp.Confidence}, nil
}

// Close shuts down the Python process.
func (c *SVMClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}

	if c.stdin != nil {
		c.stdin.Close()
	}

	err := c.cmd.Wait()
	c.started = false
	c.cmd = nil
	c.stdin = nil
	c.stdout = nil

	return err
}

func (c *SVMClassifier) ensureStarted() error {
	if c.started {
		return nil
	}

	scriptPath := findSVMScript()
	if scriptPath == "" {
		return fmt.Errorf("svm_service.py not found")
	}

	pythonPath := findClassifierPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	c.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	c.cmd.Stderr = os.Stderr

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("start svm service: %w", err)
	}

	c.stdin = stdin
	c.stdout = bufio.NewReader(stdout)
	c.started = true

	return nil
}

func findSVMScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/svm_service.py",
		"../scripts/svm_service.py",
		filepath.Join(execDir, "scripts/svm_service.py"),
		filepath.Join(os.Getenv("HOME"), ".moveright/scripts/svm_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

func findClassifierPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".moveright/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
