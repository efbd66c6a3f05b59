// Command regulum loads triple datasets and reads them back as typed
// documents and query results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/regulumdb/regulumdb/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
