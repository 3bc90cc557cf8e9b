package main

import (
	"shoplens/cmd/cmd"
)

func main() {
	cmd.Execute()
}
