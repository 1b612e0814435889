// Command bulkmail composes and sends personalised bulk email, and runs the
// relay that delivers it.
package main

import (
	"os"

	"github.com/manavc-13/KIIT-Mailer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
