package main

import "frontdesk-backend/internal/cli"

func main() {
	cli.Execute()
}
