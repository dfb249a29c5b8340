package main

import "wallet_state/internal/cli"

func main() {
	cli.Execute()
}
