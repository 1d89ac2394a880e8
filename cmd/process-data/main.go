package main

import (
	"os"

	"github.com/David-Botos/message-ingress/pkg/cli"
	"github.com/David-Botos/message-ingress/pkg/transfer"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(transfer.ExitCodeForError(err))
	}
}
