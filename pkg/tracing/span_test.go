package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestStart_NestsUnderParent(t *testing.T) {
	ctx, root := Start(context.Background(), "index-build")
	_, build := Start(ctx, "build")
	_, persist := Start(ctx, "persist")
	build.End()
	persist.End()
	root.End()

	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	if build.TraceID != root.TraceID || persist.TraceID != root.TraceID {
		t.Errorf("child trace ids differ from root %q", root.TraceID)
	}
	if root.TraceID == "" {
		t.Error("root trace id is empty")
	}

	_, other := Start(context.Background(), "other")
	if other.TraceID == root.TraceID {
		t.Error("independent roots share a trace id")
	}
}

func TestEnd_Idempotent(t *testing.T) {
	_, s := Start(context.Background(), "x")
	s.End()
	first := s.Duration
	s.End()
	if s.Duration != first {
		t.Errorf("Duration changed on second End: %v -> %v", first, s.Duration)
	}
}

func TestNilSpan(t *testing.T) {
	var s *Span
	s.End()
	s.SetAttr("k", 1)
	s.Log(slog.Default())
	if FromContext(context.Background()) != nil {
		t.Error("FromContext on empty context should be nil")
	}
}

func TestLog_WritesTree(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := Start(context.Background(), "index-build")
	root.SetAttr("terms", 42)
	_, child := Start(ctx, "write-dictionaries")
	child.End()
	root.End()
	root.Log(logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2: %s", len(lines), buf.String())
	}
	var first, second map[string]any
	json.Unmarshal([]byte(lines[0]), &first)
	json.Unmarshal([]byte(lines[1]), &second)
	if first["span"] != "index-build" || first["level"] != "INFO" || first["terms"] != float64(42) {
		t.Errorf("root line = %v", first)
	}
	if second["span"] != "write-dictionaries" || second["level"] != "DEBUG" || second["depth"] != float64(1) {
		t.Errorf("child line = %v", second)
	}
}
