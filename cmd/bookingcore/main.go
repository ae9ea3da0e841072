package main

import "github.com/amberrentals/bookingcore/cmd/bookingcore/cmd"

func main() {
	cmd.Execute()
}
