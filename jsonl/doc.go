// Package jsonl handles newline-delimited JSON: one JSON document per line.
//
// Text-generation servers use this framing to deliver incremental output over
// a single HTTP response body. The same framing is used for transcripts, where
// every decoded chunk of a generation is appended to a file as it arrives.
//
// Decoding a response body:
//
//	dec := jsonl.NewDecoder(resp.Body, 0)
//	for {
//	    line, err := dec.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // line holds one JSON document
//	}
//
// Recording and following a transcript:
//
//	w, _ := jsonl.Create("run.jsonl")
//	defer w.Close()
//	_ = w.Write(chunk)
//
//	r, _ := jsonl.NewReader("run.jsonl")
//	defer r.Close()
//	for line := range r.Tail(ctx, true) {
//	    // ...
//	}
package jsonl
