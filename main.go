package main

import "github.com/psyconnect/psyconnect_backend/cmd"

func main() {
	cmd.Execute()
}
