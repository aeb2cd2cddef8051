// Package generate is a client for a local text-generation server's
// /api/generate endpoint, such as the one Ollama serves on localhost:11434.
//
// A generation can be consumed three ways:
//
//   - GenerateBuffered requests a streamed response and returns every decoded
//     chunk once the body is exhausted.
//   - GenerateSingle requests a non-streamed response and returns the single
//     decoded object.
//   - GenerateStreaming requests a streamed response and returns a Stream that
//     decodes one chunk per call to Next, for printing text as it arrives.
//
// All three share one decode loop over the newline-delimited JSON body, so the
// concatenated response fragments of a streamed generation match the response
// of an equivalent non-streamed one.
//
// # Usage
//
//	client := generate.NewClient()
//
//	stream, err := client.GenerateStreaming(ctx, "llama3.1", "say hi")
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for stream.Next() {
//	    fmt.Print(stream.Text())
//	}
//	if err := stream.Err(); err != nil {
//	    return err
//	}
//
// # Errors
//
// Failures are reported as *RequestError (the HTTP call failed or returned a
// non-2xx status), *DecodeError (a line or body was not valid JSON) or
// *SchemaError (a decoded object had no "response" member). Nothing is
// retried.
package generate
