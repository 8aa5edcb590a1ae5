package app

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"stockbrief/internal/config"
	"stockbrief/internal/logger"
)

// SetupLogging applies the app section to the package logger. Logs go to
// stderr, teed into log_path when set; LLM transcripts go to llm_log_path.
// The returned func closes any opened files.
func SetupLogging(cfg config.AppConfig) (func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	var out io.Writer = os.Stderr
	if f, err := openAppend(cfg.LogPath); err != nil {
		return closeAll, err
	} else if f != nil {
		files = append(files, f)
		out = io.MultiWriter(os.Stderr, f)
		log.SetOutput(out)
	}
	logger.SetFormat(cfg.LogFormat, out)
	logger.SetLevel(cfg.LogLevel)

	logger.SetLLMWriter(nil)
	if f, err := openAppend(cfg.LLMLog); err != nil {
		return closeAll, err
	} else if f != nil {
		files = append(files, f)
		logger.SetLLMWriter(f)
	}
	logger.EnableLLMPayloadDump(cfg.LLMDump)
	return closeAll, nil
}

func openAppend(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
