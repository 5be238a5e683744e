package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joeydtaylor/sideband/pkg/builder"
)

// isPayload diverts opaque payloads to the out-of-band channel; everything
// else is inlined into the byte stream.
func isPayload(v any) bool {
	_, ok := v.(*builder.Blob)
	return ok
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := builder.NewLogger(builder.LoggerWithLevel("debug"))

	// A checkpoint-style graph: metadata inline, device payloads shared
	// between two positions.
	weights := &builder.Blob{Location: "gpu:0", Data: []byte{0x01, 0x02, 0x03, 0x04}}
	bias := &builder.Blob{Location: "gpu:0", Data: []byte{0x05, 0x06}}
	graph := map[string]any{
		"step":   int64(1200),
		"layers": []any{weights, bias, weights},
		"tags":   []any{"resume", "fp32"},
	}

	flattener := builder.NewFlattener(
		ctx,
		builder.FlattenerWithPredicate(isPayload),
		builder.FlattenerWithLogger(logger),
		builder.FlattenerWithComponentMetadata("CheckpointFlattener", "flatten-example-1"),
	)

	extracted, stream, err := flattener.Flatten(ctx, graph)
	if err != nil {
		fmt.Printf("Flatten failed: %v\n", err)
		return
	}
	fmt.Printf("Flattened graph: %d bytes, %d extracted payloads\n", len(stream), len(extracted))
	for i, v := range extracted {
		b := v.(*builder.Blob)
		fmt.Printf("  [%d] %s (%d bytes)\n", i, b.Location, len(b.Data))
	}

	// The shared payload was extracted once; reconstruction threads it back
	// into both positions from the same source slot.
	unflattener := builder.NewUnflattener(
		ctx,
		builder.UnflattenerWithLogger(logger),
		builder.UnflattenerWithComponentMetadata("CheckpointUnflattener", "flatten-example-2"),
	)
	restored, err := unflattener.Unflatten(ctx, stream, builder.NewSliceSource(extracted))
	if err != nil {
		fmt.Printf("Unflatten failed: %v\n", err)
		return
	}

	m := restored.(map[string]any)
	layers := m["layers"].([]any)
	fmt.Printf("Restored step %v with %d layers\n", m["step"], len(layers))
	fmt.Printf("Positions 0 and 2 alias one instance: %v\n", layers[0] == layers[2])

	logger.Flush()
}
