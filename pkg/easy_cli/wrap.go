// pkg/easy_cli/wrap.go

package easy_cli

import (
	"context"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_err"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap adapts a RuntimeContext handler to cobra's RunE, adding panic
// recovery and the expected-error classification on the way out.
func Wrap(fn func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := easy_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !easy_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
