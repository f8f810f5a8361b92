// cmd/version/version.go

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tes3mp-easy version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tes3mp-easy %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}
