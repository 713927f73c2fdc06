// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screenshot

import (
	"context"
	"encoding/hex"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/droidbridge/lib/bridge"
	"github.com/bureau-foundation/droidbridge/lib/clipboard"
	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/imageconv"
	"github.com/bureau-foundation/droidbridge/lib/localpath"
	"github.com/bureau-foundation/droidbridge/lib/testutil"
)

// fakeResolver resolves every request to id, or fails with err.
type fakeResolver struct {
	id    string
	err   error
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, requested string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	if requested != "" {
		return requested, nil
	}
	return r.id, nil
}

// fakeBridge plays a device that returns payload as its screen. Stream
// answers exec-out; Run answers screencap, pull and rm for the
// device-file strategy.
type fakeBridge struct {
	payload   []byte
	streamErr error
	// failArgs fails any Run whose first two args match.
	failArgs []string
	commands []bridge.Command
}

func (b *fakeBridge) Stream(_ context.Context, command bridge.Command, output io.Writer) error {
	b.commands = append(b.commands, command)
	if b.streamErr != nil {
		return b.streamErr
	}
	_, err := output.Write(b.payload)
	return err
}

func (b *fakeBridge) Run(_ context.Context, command bridge.Command) (string, error) {
	b.commands = append(b.commands, command)
	if len(b.failArgs) > 0 && len(command.Args) >= 2 && slices.Equal(command.Args[:2], b.failArgs) {
		return "", failure.New(failure.BridgeCommandFailed, "ADB command failed: %s", strings.Join(command.Args, " "))
	}
	if command.Args[0] == "pull" {
		return "1 file pulled", os.WriteFile(command.Args[2], b.payload, 0o600)
	}
	return "", nil
}

// recordingCopier records clipboard deliveries and checks the file is
// still present at hand-off time.
type recordingCopier struct {
	t       *testing.T
	err     error
	paths   []string
	formats []imageconv.Format
}

func (c *recordingCopier) CopyImage(_ context.Context, path string, format imageconv.Format) error {
	if _, err := os.Stat(path); err != nil {
		c.t.Errorf("clipboard received a missing file: %v", err)
	}
	c.paths = append(c.paths, path)
	c.formats = append(c.formats, format)
	return c.err
}

type harness struct {
	home     string
	tempDir  string
	resolver *fakeResolver
	bridge   *fakeBridge
	copier   *recordingCopier
	pipeline *Pipeline
}

func newHarness(t *testing.T, strategy Strategy) *harness {
	t.Helper()
	h := &harness{
		home:     t.TempDir(),
		tempDir:  t.TempDir(),
		resolver: &fakeResolver{id: "emulator-5554"},
		bridge:   &fakeBridge{payload: testutil.PNG(t, 12, 20)},
		copier:   &recordingCopier{t: t},
	}
	h.pipeline = New(Options{
		Resolver:  h.resolver,
		Bridge:    h.bridge,
		Paths:     localpath.NewResolver(h.home),
		Clipboard: func() (clipboard.Copier, error) { return h.copier, nil },
		Strategy:  strategy,
		TempDir:   h.tempDir,
	})
	return h
}

func digestOf(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func decodedFormat(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	_, name, err := image.DecodeConfig(file)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return name
}

func TestCapture_SaveRelativePathUnderHome(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)

	result, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("shots/a.png")})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	want := filepath.Join(h.home, "shots", "a.png")
	if result.Path != want {
		t.Errorf("Path = %q, want %q", result.Path, want)
	}
	if result.Format != imageconv.PNG || result.Width != 12 || result.Height != 20 {
		t.Errorf("Result = %+v", result)
	}
	if result.Device != "emulator-5554" {
		t.Errorf("Device = %q", result.Device)
	}
	if result.Digest != digestOf(t, want) {
		t.Errorf("Digest does not match delivered bytes")
	}
	if entries := testutil.Entries(t, filepath.Dir(want)); !slices.Equal(entries, []string{"a.png"}) {
		t.Errorf("destination directory = %v, want only a.png", entries)
	}

	if len(h.bridge.commands) != 1 {
		t.Fatalf("bridge commands = %+v", h.bridge.commands)
	}
	command := h.bridge.commands[0]
	if command.Device != "emulator-5554" || !slices.Equal(command.Args, []string{"exec-out", "screencap", "-p"}) {
		t.Errorf("capture command = %+v", command)
	}
}

func TestCapture_ConvertsAndAdjustsExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format      imageconv.Format
		requested   string
		wantName    string
		wantDecoder string
	}{
		{format: imageconv.JPG, requested: "shot.png", wantName: "shot.jpg", wantDecoder: "jpeg"},
		{format: imageconv.WebP, requested: "shot", wantName: "shot.webp", wantDecoder: "webp"},
		{format: imageconv.BMP, requested: "shot.bmp", wantName: "shot.bmp", wantDecoder: "bmp"},
		{format: imageconv.GIF, requested: "shot.out", wantName: "shot.out", wantDecoder: "gif"},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.format), func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StrategyStream)

			result, err := h.pipeline.Capture(context.Background(), Request{
				Device:      "emulator-5554",
				Destination: ToFile(testCase.requested),
				Format:      testCase.format,
			})
			if err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if filepath.Base(result.Path) != testCase.wantName {
				t.Errorf("final name = %q, want %q", filepath.Base(result.Path), testCase.wantName)
			}
			if got := decodedFormat(t, result.Path); got != testCase.wantDecoder {
				t.Errorf("delivered file decodes as %q, want %q", got, testCase.wantDecoder)
			}
			if entries := testutil.Entries(t, h.home); !slices.Equal(entries, []string{testCase.wantName}) {
				t.Errorf("home = %v, want only %s", entries, testCase.wantName)
			}
		})
	}
}

func TestCapture_FailuresLeaveNoArtifacts(t *testing.T) {
	t.Parallel()

	truncatedPNG := func(t *testing.T) []byte {
		// Signature plus IHDR: the header decodes, the pixels do not.
		return testutil.PNG(t, 12, 20)[:33]
	}

	tests := []struct {
		name     string
		setup    func(t *testing.T, h *harness)
		format   imageconv.Format
		wantKind failure.Kind
	}{
		{
			name: "capture command fails",
			setup: func(t *testing.T, h *harness) {
				h.bridge.streamErr = failure.New(failure.BridgeCommandFailed, "ADB command failed: error: closed")
			},
			wantKind: failure.CaptureFailed,
		},
		{
			name:     "empty capture",
			setup:    func(t *testing.T, h *harness) { h.bridge.payload = nil },
			wantKind: failure.CaptureFailed,
		},
		{
			name:     "non-png capture",
			setup:    func(t *testing.T, h *harness) { h.bridge.payload = []byte("error: no devices/emulators found") },
			wantKind: failure.CaptureFailed,
		},
		{
			name:     "conversion fails",
			setup:    func(t *testing.T, h *harness) { h.bridge.payload = truncatedPNG(t) },
			format:   imageconv.JPG,
			wantKind: failure.ConversionFailed,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name+" to file", func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StrategyStream)
			testCase.setup(t, h)

			_, err := h.pipeline.Capture(context.Background(), Request{
				Destination: ToFile("out/shot.png"),
				Format:      testCase.format,
			})
			if failure.KindOf(err) != testCase.wantKind {
				t.Fatalf("error = %v (kind %q), want %q", err, failure.KindOf(err), testCase.wantKind)
			}
			if entries := testutil.Entries(t, filepath.Join(h.home, "out")); len(entries) != 0 {
				t.Errorf("artifacts left behind: %v", entries)
			}
		})

		t.Run(testCase.name+" to clipboard", func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StrategyStream)
			testCase.setup(t, h)

			_, err := h.pipeline.Capture(context.Background(), Request{
				Destination: ToClipboard(),
				Format:      testCase.format,
			})
			if failure.KindOf(err) != testCase.wantKind {
				t.Fatalf("error = %v (kind %q), want %q", err, failure.KindOf(err), testCase.wantKind)
			}
			if entries := testutil.Entries(t, h.tempDir); len(entries) != 0 {
				t.Errorf("artifacts left behind: %v", entries)
			}
			if len(h.copier.paths) != 0 {
				t.Errorf("clipboard called after a failed capture")
			}
		})
	}
}

func TestCapture_Clipboard(t *testing.T) {
	t.Parallel()

	for _, format := range []imageconv.Format{imageconv.PNG, imageconv.JPEG} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, StrategyStream)

			result, err := h.pipeline.Capture(context.Background(), Request{
				Destination: ToClipboard(),
				Format:      format,
			})
			if err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if result.Path != "" {
				t.Errorf("clipboard result has Path %q", result.Path)
			}
			if len(h.copier.paths) != 1 || h.copier.formats[0] != format {
				t.Fatalf("clipboard deliveries = %v %v", h.copier.paths, h.copier.formats)
			}
			if filepath.Dir(h.copier.paths[0]) != h.tempDir {
				t.Errorf("staging %q not in temp dir %q", h.copier.paths[0], h.tempDir)
			}
			if entries := testutil.Entries(t, h.tempDir); len(entries) != 0 {
				t.Errorf("staging files left behind: %v", entries)
			}
		})
	}
}

func TestCapture_ClipboardFailureCleansUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)
	h.copier.err = failure.New(failure.ClipboardFailed, "Failed to copy image to clipboard: xclip: Can't open display")

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToClipboard()})
	if failure.KindOf(err) != failure.ClipboardFailed {
		t.Fatalf("error = %v, want ClipboardFailed", err)
	}
	if entries := testutil.Entries(t, h.tempDir); len(entries) != 0 {
		t.Errorf("staging files left behind: %v", entries)
	}
}

func TestCapture_UnsupportedPlatformCleansUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)
	h.pipeline = New(Options{
		Resolver: h.resolver,
		Bridge:   h.bridge,
		Paths:    localpath.NewResolver(h.home),
		Clipboard: func() (clipboard.Copier, error) {
			return clipboard.New("plan9", clipboard.ExecRunner{})
		},
		TempDir: h.tempDir,
	})

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToClipboard(), Format: imageconv.GIF})
	if failure.KindOf(err) != failure.UnsupportedPlatform {
		t.Fatalf("error = %v, want UnsupportedPlatform", err)
	}
	if entries := testutil.Entries(t, h.tempDir); len(entries) != 0 {
		t.Errorf("staging files left behind: %v", entries)
	}
}

func TestCapture_ResolutionFailureCreatesNothing(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)
	h.resolver.err = failure.New(failure.AmbiguousTarget, "Multiple devices connected (A, B). Please specify a device_id.")

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("dir/shot.png")})
	if failure.KindOf(err) != failure.AmbiguousTarget {
		t.Fatalf("error = %v, want AmbiguousTarget", err)
	}
	if len(h.bridge.commands) != 0 {
		t.Errorf("bridge invoked before resolution succeeded: %+v", h.bridge.commands)
	}
	if _, err := os.Stat(filepath.Join(h.home, "dir")); !os.IsNotExist(err) {
		t.Errorf("destination directory created before resolution succeeded")
	}
}

func TestCapture_UnwritableDestination(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)
	if err := os.WriteFile(filepath.Join(h.home, "blocker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("blocker/shot.png")})
	if failure.KindOf(err) != failure.DirectoryNotWritable {
		t.Fatalf("error = %v, want DirectoryNotWritable", err)
	}
	if len(h.bridge.commands) != 0 {
		t.Errorf("bridge invoked for an unwritable destination")
	}
}

func TestCapture_MissingOutputPath(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("")})
	if failure.KindOf(err) != failure.InvalidParameters {
		t.Fatalf("error = %v, want InvalidParameters", err)
	}
	if h.resolver.calls != 0 {
		t.Errorf("resolver called for an invalid request")
	}
}

func TestCapture_DeviceFileStrategy(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyDeviceFile)

	result, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile(filepath.Join(h.home, "shot.png"))})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if decodedFormat(t, result.Path) != "png" {
		t.Errorf("delivered file is not png")
	}

	if len(h.bridge.commands) != 3 {
		t.Fatalf("commands = %+v, want screencap, pull, rm", h.bridge.commands)
	}
	screencap, pull, remove := h.bridge.commands[0], h.bridge.commands[1], h.bridge.commands[2]
	remote := screencap.Args[len(screencap.Args)-1]
	if !strings.HasPrefix(remote, "/sdcard/droidbridge-") || !strings.HasSuffix(remote, ".png") {
		t.Errorf("device-side path = %q", remote)
	}
	if !slices.Equal(screencap.Args, []string{"shell", "screencap", "-p", remote}) {
		t.Errorf("screencap = %q", screencap.Args)
	}
	if pull.Args[0] != "pull" || pull.Args[1] != remote {
		t.Errorf("pull = %q", pull.Args)
	}
	if !slices.Equal(remove.Args, []string{"shell", "rm", "-f", remote}) {
		t.Errorf("rm = %q", remove.Args)
	}
	for _, command := range h.bridge.commands {
		if command.Device != "emulator-5554" {
			t.Errorf("command %q not pinned to the device", command.Args)
		}
	}
}

func TestCapture_DeviceFileRemovedAfterFailedCapture(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyDeviceFile)
	h.bridge.failArgs = []string{"shell", "screencap"}

	_, err := h.pipeline.Capture(context.Background(), Request{Destination: ToClipboard()})
	if failure.KindOf(err) != failure.CaptureFailed {
		t.Fatalf("error = %v, want CaptureFailed", err)
	}
	last := h.bridge.commands[len(h.bridge.commands)-1]
	if !slices.Equal(last.Args[:3], []string{"shell", "rm", "-f"}) {
		t.Errorf("last command = %q, want device-side rm", last.Args)
	}
	if entries := testutil.Entries(t, h.tempDir); len(entries) != 0 {
		t.Errorf("staging files left behind: %v", entries)
	}
}

func TestCapture_DistinctCapturesHaveDistinctDigests(t *testing.T) {
	t.Parallel()
	h := newHarness(t, StrategyStream)

	first, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("a.png")})
	if err != nil {
		t.Fatal(err)
	}
	again, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("b.png")})
	if err != nil {
		t.Fatal(err)
	}
	h.bridge.payload = testutil.PNG(t, 13, 20)
	changed, err := h.pipeline.Capture(context.Background(), Request{Destination: ToFile("c.png")})
	if err != nil {
		t.Fatal(err)
	}

	if first.Digest != again.Digest {
		t.Error("identical screens should have identical digests")
	}
	if first.Digest == changed.Digest {
		t.Error("different screens should have different digests")
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()
	for input, want := range map[string]Strategy{"": StrategyStream, "stream": StrategyStream, "device-file": StrategyDeviceFile} {
		got, err := ParseStrategy(input)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseStrategy("carrier-pigeon"); err == nil {
		t.Error("unknown strategy accepted")
	}
}
