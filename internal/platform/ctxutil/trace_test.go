package ctxutil

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("want empty got=%q", got)
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	if got := RequestID(ctx); got != "r-1" {
		t.Fatalf("want=%q got=%q", "r-1", got)
	}
	if td := GetTraceData(ctx); td == nil || td.TraceID != "t-1" {
		t.Fatalf("trace data not found: %+v", td)
	}
}
