// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package process

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/logger"
)

// shellRequest builds a request that runs the script under /bin/sh. The
// transcoder is faked with shell printf so the tests run everywhere the
// shell exists.
func shellRequest(t *testing.T, mode Mode, script string) Request {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-scripted children need a POSIX shell")
	}
	return Request{
		Binary: "/bin/sh",
		Args:   []string{"-c", script},
		Mode:   mode,
		Input:  "test-input",
	}
}

const transcodeScript = `printf 'Duration: 00:01:30.00, start: 0.000000, bitrate: 850 kb/s\n' >&2
printf '    Stream #0:0(und): Video: h264 (avc1 / 0x31637661), yuv420p, 1280x720, 23.98 fps\n' >&2
printf 'frame=  171 fps= 25 q=28.0 size=    1024kB time=00:00:06.84 bitrate=1225.6kbits/s\r' >&2
printf 'frame= 2158 fps= 25 q=-1.0 Lsize=     512kB time=00:01:30.00 bitrate= 850.0kbits/s\n' >&2
exit 0`

func TestRunTranscodeSuccess(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeTranscode, transcodeScript)

	var pid int
	var captured []Line
	req.OnStart = func(p int) { pid = p }
	req.OnLine = func(ln Line) { captured = append(captured, ln) }

	var notes []parse.Notification
	out, err := sup.Run(context.Background(), req, func(n parse.Notification) {
		notes = append(notes, n)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if pid <= 0 {
		t.Errorf("OnStart pid = %d", pid)
	}
	if len(captured) != len(out.Log) {
		t.Errorf("OnLine saw %d lines, transcript has %d", len(captured), len(out.Log))
	}
	for _, ln := range out.Log {
		if ln.Source != "stderr" {
			t.Errorf("line %q tagged %q, want stderr", ln.Data, ln.Source)
		}
	}

	if !out.CompletionFound || out.Result == nil {
		t.Fatalf("no completion: found=%v result=%v", out.CompletionFound, out.Result)
	}
	if out.Result.SizeKB != 512 || out.Result.TotalDuration != 90*time.Second || out.Result.BitrateKbps != 850.0 {
		t.Errorf("result = %+v", out.Result)
	}
	if out.Result.Width != 1280 || out.Result.Height != 720 {
		t.Errorf("resolution = %dx%d, want 1280x720", out.Result.Width, out.Result.Height)
	}

	// Two progress-shaped lines, then the completion, in order.
	if len(notes) != 3 {
		t.Fatalf("got %d notifications, want 3: %+v", len(notes), notes)
	}
	if notes[0].Kind != parse.NotifyProgress || notes[1].Kind != parse.NotifyProgress {
		t.Errorf("first notifications should be progress: %+v", notes[:2])
	}
	if notes[2].Kind != parse.NotifyCompleted {
		t.Errorf("last notification should be the completion: %+v", notes[2])
	}
	if notes[0].Progress.Fraction <= 0 || notes[0].Progress.Fraction > 1 {
		t.Errorf("fraction = %v", notes[0].Progress.Fraction)
	}
}

func TestRunNonzeroExitEmptyOutput(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeTranscode, "exit 3")

	out, err := sup.Run(context.Background(), req, nil)
	if out != nil {
		t.Fatalf("outcome = %+v, want nil on failure", out)
	}

	var failure *FailureRecord
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v (%T), want FailureRecord", err, err)
	}
	if failure.ExitCode != 3 || !failure.Exited {
		t.Errorf("exit = %d exited=%v, want 3/true", failure.ExitCode, failure.Exited)
	}
	if len(failure.Log) != 0 {
		t.Errorf("log = %+v, want empty", failure.Log)
	}
	if got := failure.Error(); got != "3: " {
		t.Errorf("Error() = %q, want %q", got, "3: ")
	}
}

func TestRunNonzeroExitWithMarker(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeTranscode,
		`printf "Unknown encoder 'libx265'\n" >&2; printf 'Conversion failed!\n' >&2; exit 1`)

	_, err := sup.Run(context.Background(), req, nil)
	var failure *FailureRecord
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v (%T), want FailureRecord", err, err)
	}
	if failure.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", failure.ExitCode)
	}
	if failure.Marker != "Unknown encoder 'libx265'" {
		t.Errorf("marker = %q, want the first known error line", failure.Marker)
	}
	if len(failure.Log) != 2 {
		t.Errorf("log has %d lines, want 2", len(failure.Log))
	}
}

func TestRunExitZeroWithoutMarkerFails(t *testing.T) {
	// Strict transcode policy: exit 0 alone is not success.
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeTranscode, "printf 'Duration: 00:01:30.00\\n' >&2; exit 0")

	_, err := sup.Run(context.Background(), req, nil)
	if !errors.Is(err, ErrNoCompletionMarker) {
		t.Fatalf("error = %v, want ErrNoCompletionMarker", err)
	}
	var failure *FailureRecord
	if !errors.As(err, &failure) {
		t.Fatalf("error = %T, want FailureRecord", err)
	}
	if failure.ExitCode != 0 || !failure.Exited {
		t.Errorf("exit = %d exited=%v, want 0/true", failure.ExitCode, failure.Exited)
	}
}

func TestRunMetadataLenient(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())

	// Duration seen: completion found.
	req := shellRequest(t, ModeMetadata, "printf 'Duration: 00:01:30.00, start: 0.0\\n' >&2; exit 0")
	out, err := sup.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.CompletionFound || !out.Summary.HasDuration {
		t.Errorf("found=%v hasDuration=%v, want true/true", out.CompletionFound, out.Summary.HasDuration)
	}

	// Exit 0 without any stream banner: lenient, success without marker.
	req = shellRequest(t, ModeMetadata, "printf 'nothing to see\\n' >&2; exit 0")
	out, err = sup.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.CompletionFound {
		t.Error("completion reported without a duration")
	}
}

func TestRunProbe(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeProbe,
		`printf '{"streams": [], "format": {"duration": "90.0"}}\n'; exit 0`)

	out, err := sup.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.CompletionFound {
		t.Error("probe payload not detected")
	}
	if len(out.Log) == 0 || out.Log[0].Source != "stdout" {
		t.Errorf("payload should arrive on stdout: %+v", out.Log)
	}
}

func TestRunRawWithoutMarker(t *testing.T) {
	// Raw runs never fail on a missing summary.
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeRaw, "printf 'whatever\\n' >&2; exit 0")

	out, err := sup.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.CompletionFound || out.Result != nil {
		t.Errorf("found=%v result=%v, want no completion", out.CompletionFound, out.Result)
	}
}

func TestRunClassificationFault(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	injected := errors.New("injected classification fault")
	sup.classify = func(line string, knowDuration bool) ([]parse.Update, error) {
		if strings.Contains(line, "boom") {
			return nil, injected
		}
		return parse.Classify(line, knowDuration)
	}

	// The fault line comes first; the progress lines after it must not
	// produce any notification.
	req := shellRequest(t, ModeTranscode, `printf 'boom\n' >&2
printf 'Duration: 00:01:30.00\n' >&2
printf 'frame=  171 fps= 25 q=28.0 size=    1024kB time=00:00:06.84 bitrate=1225.6kbits/s\n' >&2
exit 0`)

	var notes []parse.Notification
	_, err := sup.Run(context.Background(), req, func(n parse.Notification) {
		notes = append(notes, n)
	})

	var failure *FailureRecord
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v (%T), want FailureRecord", err, err)
	}
	if !failure.Killed {
		t.Error("child should be marked killed after a fault")
	}
	if !errors.Is(err, injected) {
		t.Errorf("fault not carried: %v", failure.Fault)
	}
	if len(notes) != 0 {
		t.Errorf("got %d notifications after the fault, want 0", len(notes))
	}
	if len(failure.Log) == 0 {
		t.Error("transcript should still be drained after the fault")
	}
}

func TestRunCanceled(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	req := shellRequest(t, ModeTranscode, "printf 'Duration: 00:01:30.00\\n' >&2; while :; do :; done")

	ctx, cancel := context.WithCancel(context.Background())
	req.OnStart = func(int) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()
	}
	defer cancel()

	_, err := sup.Run(ctx, req, nil)
	var failure *FailureRecord
	if !errors.As(err, &failure) {
		t.Fatalf("error = %v (%T), want FailureRecord", err, err)
	}
	if !failure.Killed {
		t.Error("canceled run should be marked killed")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("fault = %v, want context.Canceled", failure.Fault)
	}
}

func TestRunNoBinary(t *testing.T) {
	sup := NewSupervisor(logger.NewNop())
	if _, err := sup.Run(context.Background(), Request{}, nil); err == nil {
		t.Fatal("expected an error for an empty binary")
	}
}

func TestExitStatus(t *testing.T) {
	if code, exited := exitStatus(nil); code != 0 || !exited {
		t.Errorf("exitStatus(nil) = %d/%v", code, exited)
	}
	if code, exited := exitStatus(errors.New("plain")); code != -1 || exited {
		t.Errorf("exitStatus(plain) = %d/%v", code, exited)
	}
}
