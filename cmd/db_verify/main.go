// cmd/db_verify/main.go
package main

import (
	"os"

	"go_quiz_db/internal/cli"
)

func main() {
	cmd := cli.NewVerifyCommand(os.Stdout, os.Stderr)
	os.Exit(cli.Execute(cmd, os.Stderr))
}
