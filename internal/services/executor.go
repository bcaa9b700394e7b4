package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/pandeptwidyaop/bagfilter/internal/config"
	"github.com/pandeptwidyaop/bagfilter/internal/models"
	"go.uber.org/zap"
)

// Runner starts a command and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, cmd *Command, stdout, stderr io.Writer) error
}

// ExecRunner runs commands as child processes. Arguments are passed as a
// vector; no shell is involved.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd *Command, stdout, stderr io.Writer) error {
	c := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

// ExecutorService runs external tool commands and records them in the history.
type ExecutorService struct {
	runner  Runner
	history *HistoryService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewExecutorService creates an executor. history may be nil to skip recording.
func NewExecutorService(runner Runner, history *HistoryService, cfg *config.Config, logger *zap.Logger) *ExecutorService {
	return &ExecutorService{
		runner:  runner,
		history: history,
		cfg:     cfg,
		logger:  logger,
	}
}

// Capture runs cmd and returns its standard output.
func (s *ExecutorService) Capture(ctx context.Context, action models.RunAction, bagPath string, cmd *Command) ([]byte, error) {
	runID := s.createRun(action, bagPath, cmd)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var stdout, stderr bytes.Buffer
	s.logger.Debug("Running command", zap.String("command", cmd.String()), zap.String("run_id", runID))
	err := s.runner.Run(ctx, cmd, &stdout, &stderr)

	exitCode := exitCodeOf(err)
	s.finishRun(runID, err, stdout.String()+stderr.String(), "", exitCode)

	if err != nil {
		return nil, s.toolError(cmd, err, exitCode, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Execute runs cmd, streaming its stdout and stderr line by line to out.
func (s *ExecutorService) Execute(ctx context.Context, action models.RunAction, bagPath string, cmd *Command, out io.Writer) error {
	runID := s.createRun(action, bagPath, cmd)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	var output strings.Builder
	var stderrTail strings.Builder
	var outputMu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.streamOutput(stdoutR, out, &output, nil, &outputMu)
	}()
	go func() {
		defer wg.Done()
		s.streamOutput(stderrR, out, &output, &stderrTail, &outputMu)
	}()

	s.logger.Info("Running command", zap.String("command", cmd.String()), zap.String("run_id", runID))
	err := s.runner.Run(ctx, cmd, stdoutW, stderrW)
	_ = stdoutW.Close()
	_ = stderrW.Close()
	wg.Wait()

	exitCode := exitCodeOf(err)

	outputMu.Lock()
	finalOutput := output.String()
	finalStderr := stderrTail.String()
	outputMu.Unlock()

	s.finishRun(runID, err, finalOutput, cmd.OutputPath, exitCode)

	if err != nil {
		return s.toolError(cmd, err, exitCode, finalStderr)
	}
	s.logger.Info("Command finished", zap.String("run_id", runID), zap.Int("exit_code", exitCode))
	return nil
}

func (s *ExecutorService) streamOutput(r io.Reader, out io.Writer, output, tail *strings.Builder, mu *sync.Mutex) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		mu.Lock()
		output.WriteString(line + "\n")
		if tail != nil {
			tail.WriteString(line + "\n")
		}
		if out != nil {
			_, _ = io.WriteString(out, line+"\n")
		}
		mu.Unlock()
	}
	// Keep the writer side unblocked if scanning stopped early.
	_, _ = io.Copy(io.Discard, r)
}

func (s *ExecutorService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout := s.cfg.Execution.GetTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func (s *ExecutorService) createRun(action models.RunAction, bagPath string, cmd *Command) string {
	if s.history == nil {
		return ""
	}
	run, err := s.history.CreateRun(action, bagPath, cmd.String())
	if err != nil {
		s.logger.Warn("Failed to record run", zap.Error(err))
		return ""
	}
	if err := s.history.StartRun(run.ID); err != nil {
		s.logger.Warn("Failed to mark run started", zap.String("run_id", run.ID), zap.Error(err))
	}
	return run.ID
}

func (s *ExecutorService) finishRun(id string, runErr error, output, outputPath string, exitCode int) {
	if s.history == nil || id == "" {
		return
	}

	status := models.StatusSuccess
	if runErr != nil {
		status = models.StatusFailed
	}
	if limit := s.cfg.Execution.MaxOutputSize; limit > 0 && len(output) > limit {
		output = output[len(output)-limit:]
	}

	if err := s.history.FinishRun(id, status, output, outputPath, exitCode); err != nil {
		s.logger.Warn("Failed to record run result", zap.String("run_id", id), zap.Error(err))
	}
}

func (s *ExecutorService) toolError(cmd *Command, err error, exitCode int, stderr string) error {
	s.logger.Error("Command failed",
		zap.String("program", cmd.Program),
		zap.Int("exit_code", exitCode),
		zap.Error(err),
	)
	return &ExternalToolError{
		Tool:     cmd.Program,
		Args:     cmd.Args,
		ExitCode: exitCode,
		Stderr:   stderr,
		Err:      err,
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
