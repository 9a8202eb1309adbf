package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/swatinair123/OSprayLoadObj/engine"
	"github.com/swatinair123/OSprayLoadObj/log"
)

func TestEngineInitFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	failingInit := func(args []string) (*engine.Device, []string, error) {
		return nil, nil, engine.UnknownError
	}
	if code := run([]string{"osprayloadobj"}, failingInit); code != 1 {
		t.Fatalf("expected exit code 1; got %d", code)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files to be written; found %d", len(entries))
	}
}

func TestEngineInitArgumentError(t *testing.T) {
	chdir(t, t.TempDir())
	if code := run([]string{"osprayloadobj", "--osp:numthreads", "none"}, engine.Init); code != int(engine.InvalidArgument) {
		t.Fatalf("expected exit code %d; got %d", engine.InvalidArgument, code)
	}
}

func TestRenderWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	args := []string{"osprayloadobj", "--osp:numthreads=2", "--width", "12", "--height", "9", "--accum-frames", "3", "--stats"}
	if code := run(args, engine.Init); code != 0 {
		t.Fatalf("expected exit code 0; got %d", code)
	}

	expHeader := []byte("P6\n12 9\n255\n")
	for _, name := range []string{"firstFrame.ppm", "accumulatedFrame.ppm"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, expHeader) || len(data) != len(expHeader)+3*12*9+1 {
			t.Fatalf("unexpected contents for %s: %d bytes", name, len(data))
		}
	}
}

func TestRenderWriteFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"osprayloadobj", "--osp:numthreads=1", "--width", "4", "--height", "4",
		"--first-out", filepath.Join(dir, "missing", "first.ppm"),
		"--accum-out", filepath.Join(dir, "accum.ppm"),
		"render",
	}
	if code := run(args, engine.Init); code != 1 {
		t.Fatalf("expected exit code 1; got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "accum.ppm")); !os.IsNotExist(err) {
		t.Fatal("expected accumulated snapshot to be skipped")
	}
}

func TestSceneInfoAndListDevices(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(os.Stdout)

	if code := run([]string{"osprayloadobj", "--osp:numthreads=2", "scene-info"}, engine.Init); code != 0 {
		t.Fatalf("expected scene-info to exit with 0; got %d", code)
	}
	if code := run([]string{"osprayloadobj", "--osp:numthreads=2", "list-devices"}, engine.Init); code != 0 {
		t.Fatalf("expected list-devices to exit with 0; got %d", code)
	}

	out := buf.String()
	for _, exp := range []string{"Vertices", "cpu-00", "cpu-01"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q; got\n%s", exp, out)
		}
	}
}

func TestInvalidSceneSizeExitCode(t *testing.T) {
	chdir(t, t.TempDir())
	if code := run([]string{"osprayloadobj", "--osp:numthreads=1", "--width", "0"}, engine.Init); code != 1 {
		t.Fatalf("expected exit code 1; got %d", code)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
