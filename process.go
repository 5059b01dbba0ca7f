package targ

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	tt "github.com/gnolang/targ/internal/types"
)

// ProcessFile runs the engine over one file. It is the default
// processor handed to ProcessFiles.
func ProcessFile(engine CheckEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

// ProcessSources runs the engine over in-memory sources.
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine CheckEngine,
	sources [][]byte,
	processor func(CheckEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessFiles runs the engine over files and directories.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine CheckEngine,
	paths []string,
	processor func(CheckEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath runs the engine over one path. Directories are walked
// and their files checked concurrently, with a progress bar.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine CheckEngine,
	path string,
	processor func(CheckEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	// one send per file keeps each file's issues paired with its error
	resultChan := make(chan fileResult, len(files))

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(fp string) {
				defer func() { <-sem }()

				fileIssues, err := processor(engine, fp)
				if err != nil && logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				resultChan <- fileResult{issues: fileIssues, err: err}
				_ = bar.Add(1)
			}(filePath)
		}
	}

	var issues []tt.Issue
	for range files {
		result := <-resultChan
		if result.err != nil {
			continue
		}
		issues = append(issues, result.issues...)
	}
	fmt.Println()

	return issues, nil
}

type fileResult struct {
	issues []tt.Issue
	err    error
}

func hasDesiredExtension(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".go" || ext == ".gno"
}
