package testutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// WaitForCondition waits until the condition function returns true or times out
func WaitForCondition(fn func() bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	interval := 10 * time.Millisecond
	if timeout < 100*time.Millisecond {
		interval = time.Millisecond
	}

	for time.Now().Before(deadline) {
		if fn() {
			return nil
		}
		time.Sleep(interval)
	}

	return fmt.Errorf("condition not met within %v timeout", timeout)
}

// CaptureOutput captures stdout during the execution of the provided function
func CaptureOutput(fn func()) string {
	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		return ""
	}
	os.Stdout = w

	outCh := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outCh <- buf.String()
	}()

	fn()

	os.Stdout = oldStdout
	w.Close()

	return <-outCh
}

// TempHome points HOME at a fresh temporary directory for the duration of a
// test and returns the directory and a cleanup function.
func TempHome() (string, func()) {
	dir, err := os.MkdirTemp("", "borderview-test-home-*")
	if err != nil {
		return "/tmp/borderview-test-nonexistent", func() {}
	}
	_ = os.MkdirAll(filepath.Join(dir, ".config", "borderview"), 0755)

	oldHome, hadHome := os.LookupEnv("HOME")
	os.Setenv("HOME", dir)

	return dir, func() {
		if hadHome {
			os.Setenv("HOME", oldHome)
		} else {
			os.Unsetenv("HOME")
		}
		os.RemoveAll(dir)
	}
}

// SetEnv sets an environment variable and returns a cleanup function
func SetEnv(key, value string) func() {
	oldValue, hadOld := os.LookupEnv(key)
	os.Setenv(key, value)

	return func() {
		if hadOld {
			os.Setenv(key, oldValue)
		} else {
			os.Unsetenv(key)
		}
	}
}

// TempFileWithName creates a temporary file with a specific name in a temp directory
func TempFileWithName(name, content string) (string, func()) {
	dir, err := os.MkdirTemp("", "borderview-test-*")
	if err != nil {
		return "", func() {}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		os.RemoveAll(dir)
		return "", func() {}
	}

	return path, func() {
		os.RemoveAll(dir)
	}
}
