package main

import (
	"github.com/ssfz/history-vault/cmd"
)

func main() {
	cmd.Execute()
}
