package proof

import "errors"

// Sentinel errors for proof generation.
var (
	ErrReadInput   = errors.New("read input")
	ErrDecodeInput = errors.New("decode input")
	ErrWriteOutput = errors.New("write output")
)
