package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/joeydtaylor/sideband/pkg/builder"
)

func isPayload(v any) bool {
	_, ok := v.(*builder.Blob)
	return ok
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := &builder.Blob{Location: "gpu:1", Data: bytes.Repeat([]byte{0xab}, 4096)}
	graph := []any{
		map[string]any{"kind": "activation", "tensor": payload},
		map[string]any{"kind": "echo", "tensor": payload},
	}

	// Sender side: flatten, encode the extracted sequence, seal both halves
	// into one compressed envelope.
	flattener := builder.NewFlattener(ctx, builder.FlattenerWithPredicate(isPayload))
	extracted, stream, err := flattener.Flatten(ctx, graph)
	if err != nil {
		fmt.Printf("Flatten failed: %v\n", err)
		return
	}
	values, err := builder.EncodeValues(extracted)
	if err != nil {
		fmt.Printf("EncodeValues failed: %v\n", err)
		return
	}
	envelope, err := builder.Seal(stream, values, builder.CompressZstd)
	if err != nil {
		fmt.Printf("Seal failed: %v\n", err)
		return
	}
	fmt.Printf("Sealed %d stream bytes + %d value bytes into a %d byte envelope\n",
		len(stream), len(values), len(envelope))

	// Receiver side: open the envelope and reconstruct, pulling replacement
	// payloads off the decoded value stream.
	gotStream, gotValues, err := builder.Open(envelope)
	if err != nil {
		fmt.Printf("Open failed: %v\n", err)
		return
	}
	unflattener := builder.NewUnflattener(ctx)
	restored, err := unflattener.Unflatten(ctx, gotStream, builder.NewStreamSource(bytes.NewReader(gotValues)))
	if err != nil {
		fmt.Printf("Unflatten failed: %v\n", err)
		return
	}

	list := restored.([]any)
	first := list[0].(map[string]any)["tensor"].(*builder.Blob)
	second := list[1].(map[string]any)["tensor"].(*builder.Blob)
	fmt.Printf("Restored %d records; tensor landed on %q with %d bytes\n", len(list), first.Location, len(first.Data))
	fmt.Printf("Both records share one instance: %v\n", first == second)
}
