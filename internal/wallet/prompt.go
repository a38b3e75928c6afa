package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptApprover asks on out and reads a y/N answer from in.
func PromptApprover(in io.Reader, out io.Writer) Approver {
	r := bufio.NewReader(in)
	return func(ctx context.Context, req Request) (bool, error) {
		fmt.Fprintf(out, "Sign %s from %s: %s? [y/N] ", req.Kind, req.From.Hex(), req.Summary)
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
