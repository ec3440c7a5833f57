// SPDX-License-Identifier: MPL-2.0

package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineSize bounds a single request line.
const maxLineSize = 1 << 20

// Serve reads one JSON Request per line from r and writes one Response per
// line to w, until r is exhausted or ctx is canceled. Blank lines are
// skipped. Malformed lines get an invalid_request response and do not stop
// the loop. Requests are handled one at a time in arrival order.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := h.handleLine(ctx, line)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

func (h *Host) handleLine(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return &Response{Error: &Error{Kind: KindInvalidRequest, Message: err.Error()}}
	}
	if req.Method == "" {
		return &Response{ID: req.ID, Error: &Error{Kind: KindInvalidRequest, Message: "missing method"}}
	}

	h.logger.Debug("rpc call", "method", req.Method)
	result, err := h.Call(ctx, req.Method, req.Params)
	if err != nil {
		h.logger.Debug("rpc call failed", "method", req.Method, "err", err)
		return &Response{ID: req.ID, Error: ToError(err)}
	}
	return &Response{ID: req.ID, Result: result}
}
