// Package pdf renders customer statements with maroto.
package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error)
}
